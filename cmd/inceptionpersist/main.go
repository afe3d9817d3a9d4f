package main

import (
	"fmt"
	"os"

	"github.com/fulldump/goconfig"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fulldump/inceptionpersist/bootstrap"
	"github.com/fulldump/inceptionpersist/configuration"
	"github.com/fulldump/inceptionpersist/logger"
)

var VERSION = "dev"

var banner = `
 ___                      _   _             ____              _     _
|_ _|_ __   ___ ___ _ __ | |_(_) ___  _ __ |  _ \ ___ _ __ ___(_)___| |_
 | || '_ \ / __/ _ \ '_ \| __| |/ _ \| '_ \| |_) / _ \ '__/ __| / __| __|
 | || | | | (_|  __/ |_) | |_| | (_) | | | |  __/  __/ |  \__ \ \__ \ |_
|___|_| |_|\___\___| .__/ \__|_|\___/|_| |_|_|   \___|_|  |___/_|___/\__|
                   |_|                           version ` + VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.ConfigFile != "" {
		err := configuration.ReadFile(c.ConfigFile, &c)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
			os.Exit(-1)
		}
	}

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := yaml.NewEncoder(os.Stdout)
		e.SetIndent(4)
		e.Encode(c)
	}

	l, err := logger.New(c.LogLevel, c.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		os.Exit(-1)
	}
	defer l.Sync()

	bootstrap.VERSION = VERSION
	start, _, err := bootstrap.Bootstrap(&c, l)
	if err != nil {
		l.Fatal("bootstrap", zap.Error(err))
	}

	err = start()
	if err != nil {
		l.Error("serve", zap.Error(err))
	}
}
