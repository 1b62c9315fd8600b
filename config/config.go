package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultPageLength = 10
)

// ErrServerURLNotSet is a configuration problem the user fixes in settings,
// not a transient network failure.
var ErrServerURLNotSet = errors.New("server url not set")

type Config struct {
	ServerURL    string           `yaml:"ServerURL" env:"LUTE_SERVER_URL"`
	StoragePath  string           `yaml:"StoragePath" env:"LUTE_STORAGE"`
	Timeout      time.Duration    `yaml:"Timeout" env:"LUTE_TIMEOUT"`
	PageLength   int              `yaml:"PageLength" env:"LUTE_PAGE_LENGTH"`
	Proxy        string           `yaml:"Proxy" env:"LUTE_PROXY"`
	Dictionaries map[int][]string `yaml:"Dictionaries"`
}

var (
	DefaultConfig     Config
	DefaultConfigDir  string
	DefaultConfigPath string
	DefaultStorageDir string
)

func init() {
	DefaultConfigPath = path.Join(xdg.ConfigHome, "lutego", "lutego.yaml")
	DefaultConfigDir = path.Dir(DefaultConfigPath)
	DefaultStorageDir = path.Join(xdg.DataHome, "lutego")
	DefaultConfig = Config{
		StoragePath: DefaultStorageDir,
		Timeout:     DefaultTimeout,
		PageLength:  DefaultPageLength,
	}
}

type initConfigErr struct {
	s   string
	err error
}

func (e *initConfigErr) Error() string {
	return e.s
}

func (e *initConfigErr) Unwrap() error {
	return e.err
}

func newInitConfigErr(err error) error {
	return &initConfigErr{
		s:   fmt.Sprintf("Init config error: %s", err.Error()),
		err: err,
	}
}

// CreateDefaultFile writes DefaultConfig to DefaultConfigPath unless a file
// is already there.
func CreateDefaultFile(fs afero.Fs) error {
	err := fs.MkdirAll(DefaultConfigDir, 0755)
	if err != nil {
		return err
	}
	err = fs.MkdirAll(DefaultStorageDir, 0755)
	if err != nil {
		return err
	}

	exist, err := afero.Exists(fs, DefaultConfigPath)
	if err != nil {
		return err
	}

	if !exist {
		handle, err := fs.Create(DefaultConfigPath)
		if err != nil {
			return err
		}
		defer handle.Close()
		err = yaml.NewEncoder(handle).Encode(&DefaultConfig)
		if err != nil {
			return err
		}
	}
	return nil
}

// InitConfig reads the yaml file (the default one when configPathOption is
// empty), then applies environment overrides.
func InitConfig(fs afero.Fs, configPathOption string) (Config, error) {
	config := DefaultConfig
	var configfile string

	if configPathOption == "" {
		if err := CreateDefaultFile(fs); err != nil {
			return config, newInitConfigErr(err)
		}
		configfile = DefaultConfigPath
	} else {
		exist, err := afero.Exists(fs, configPathOption)
		if err != nil {
			return config, newInitConfigErr(err)
		}
		if !exist {
			return config, &initConfigErr{
				s: fmt.Sprintf("Init config error: %s not exist", configPathOption),
			}
		}
		configfile = configPathOption
	}

	handle, err := fs.Open(configfile)
	if err != nil {
		return config, newInitConfigErr(err)
	}
	defer handle.Close()
	err = yaml.NewDecoder(handle).Decode(&config)
	if err != nil {
		return config, newInitConfigErr(err)
	}

	if err := cleanenv.ReadEnv(&config); err != nil {
		return config, newInitConfigErr(err)
	}
	config.normalize()
	return config, nil
}

func (c *Config) normalize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PageLength <= 0 {
		c.PageLength = DefaultPageLength
	}
	if c.StoragePath == "" {
		c.StoragePath = DefaultStorageDir
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrServerURLNotSet
	}
	return nil
}

func (c Config) DbFile() string {
	return path.Join(c.StoragePath, "lutego.db")
}

// DictionariesFor returns the configured fallback dictionary templates for
// a language.
func (c Config) DictionariesFor(languageID int) []string {
	return c.Dictionaries[languageID]
}
