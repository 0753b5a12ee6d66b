//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package configuration

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const ConfigType = "yaml"

type Params struct {
	EnvPrefix string
	// Flags to read --config from. pflag.CommandLine when nil.
	Flags *pflag.FlagSet
	Args  []string
}

// Load fills cfg, which must already carry defaults, from the optional --config
// file and then from <PREFIX>_<SECTION>_<FIELD> environment variables.
func Load(params Params, cfg interface{}) error {
	if params.EnvPrefix == "" {
		return errors.New("EnvPrefix should be defined")
	}
	flags := params.Flags
	if flags == nil {
		flags = pflag.CommandLine
	}
	path := flags.Lookup("config")
	if path == nil {
		flags.String("config", "", "path to config")
		path = flags.Lookup("config")
	}
	if !flags.Parsed() {
		args := params.Args
		if args == nil {
			args = os.Args[1:]
		}
		if err := flags.Parse(args); err != nil {
			return errors.Wrap(err, "failed to parse flags")
		}
	}
	return load(params.EnvPrefix, path.Value.String(), cfg)
}

func load(prefix, path string, cfg interface{}) error {
	v := viper.New()
	v.SetConfigType(ConfigType)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(prefix)

	// Defaults go in as the base config so that every key is known to viper
	// and can be overridden from the environment.
	base, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal default configuration")
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return errors.Wrap(err, "failed to read default configuration")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "failed to load config %s", path)
		}
	}

	err = v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal config into configuration structure")
	}
	return nil
}

func PrintConfig(log *logrus.Logger, cfg interface{}) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to marshal config structure"))
		return
	}
	log.Infof("Loaded configuration: \n %s \n", maskPasswords(string(out)))
}

func maskPasswords(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = replacePassword(line)
	}
	return strings.Join(lines, "\n")
}

var passwordRe = regexp.MustCompile(`^(?P<start>.*)(:(?P<pass>[^@\/:?]+)@)(?P<end>.*)$`)

func replacePassword(url string) string {
	result := []byte{}
	if passwordRe.MatchString(url) {
		for _, submatches := range passwordRe.FindAllStringSubmatchIndex(url, -1) {
			result = passwordRe.ExpandString(result, `$start:<masked>@$end`, url, submatches)
		}
		return string(result)
	}
	return url
}
