package configuration

import (
	"github.com/fulldump/inceptionpersist/persistence"
)

type Configuration struct {
	HttpAddr          string             `yaml:"httpAddr" usage:"HTTP address"`
	Root              string             `yaml:"root" usage:"storage root directory"`
	Storage           string             `yaml:"storage" usage:"storage driver: disk | memory"`
	Persistence       persistence.Config `yaml:"persistence"`
	ConfigFile        string             `yaml:"-" usage:"YAML file, its values override flags and env"`
	LogLevel          string             `yaml:"logLevel" usage:"debug | info | warn | error"`
	LogFormat         string             `yaml:"logFormat" usage:"json | console"`
	EnableCompression bool               `yaml:"enableCompression" usage:"gzip responses when accepted"`
	ApiKey            string             `yaml:"apiKey" usage:"API key, empty disables authentication"`
	ApiSecret         string             `yaml:"apiSecret" usage:"API secret"`
	Version           bool               `yaml:"-" usage:"show version and exit"`
	ShowBanner        bool               `yaml:"showBanner" usage:"show big banner"`
	ShowConfig        bool               `yaml:"-" usage:"print config"`
}
