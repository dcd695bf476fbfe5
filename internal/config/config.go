// Package config loads and validates the settings of the hotpotato roles.
//
// Settings come from built-in defaults, then an optional YAML file, then the
// command line. Validate is called once everything has been applied.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/inconshreveable/log15"
	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is the cause of every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Log holds logging settings shared by both roles.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error crit"`
}

// Coordinator configures the coordinator role.
type Coordinator struct {
	Port    int   `yaml:"port" validate:"min=0,max=65535"`
	Players int   `yaml:"players" validate:"gt=1,max=65535"`
	Hops    int   `yaml:"hops" validate:"min=0,max=512"`
	Seed    int64 `yaml:"seed"`
	// GameOver is the text sent to every player when the game ends.
	GameOver string `yaml:"game_over" validate:"max=65535"`
	Log      Log    `yaml:"log"`
}

// Player configures the player role.
type Player struct {
	CoordinatorAddress string `yaml:"coordinator_address" validate:"required,hostname_rfc1123|ip"`
	CoordinatorPort    int    `yaml:"coordinator_port" validate:"min=1,max=65535"`
	// ListenPort is where this player accepts neighbor connections. 0 picks
	// an ephemeral port.
	ListenPort int   `yaml:"listen_port" validate:"min=0,max=65535"`
	Seed       int64 `yaml:"seed"`
	Log        Log   `yaml:"log"`
}

// DefaultCoordinator returns the coordinator settings used when nothing else
// is configured. Players is left at 0 so that it must be supplied.
func DefaultCoordinator() *Coordinator {
	return &Coordinator{
		GameOver: proto.GameOverText,
		Log:      Log{Level: "info"},
	}
}

// DefaultPlayer returns the player settings used when nothing else is
// configured.
func DefaultPlayer() *Player {
	return &Player{
		Log: Log{Level: "info"},
	}
}

// LoadCoordinator returns the defaults overlaid with the YAML file at path,
// if path is not empty.
func LoadCoordinator(path string) (*Coordinator, error) {
	cfg := DefaultCoordinator()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPlayer returns the defaults overlaid with the YAML file at path, if
// path is not empty.
func LoadPlayer(path string) (*Player, error) {
	cfg := DefaultPlayer()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg interface{}) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

var validate = validator.New()

// Validate checks every field constraint of the coordinator settings.
func (c *Coordinator) Validate() error {
	return check(c)
}

// Validate checks every field constraint of the player settings.
func (p *Player) Validate() error {
	return check(p)
}

func check(cfg interface{}) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "could not validate configuration")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Wrap(ErrInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is not a valid " + fe.Tag()
	}
}

// Lvl returns the log15 level named by Level.
func (l Log) Lvl() (log15.Lvl, error) {
	lvl, err := log15.LvlFromString(l.Level)
	if err != nil {
		return 0, errors.Wrap(ErrInvalid, err.Error())
	}
	return lvl, nil
}
