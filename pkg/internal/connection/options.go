package connection

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Options struct {
	Endpoint string `validate:"required,url"`
	Token    string

	ReconnectBase time.Duration
	ReconnectCeil time.Duration
}

var validate = validator.New()

// OptionsFromConfig reads the gateway options out of the loaded settings.
func OptionsFromConfig() (Options, error) {
	opts := Options{
		Endpoint:      viper.GetString("gateway.endpoint"),
		Token:         viper.GetString("gateway.token"),
		ReconnectBase: viper.GetDuration("gateway.reconnect_base"),
		ReconnectCeil: viper.GetDuration("gateway.reconnect_ceil"),
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = time.Second
	}
	if opts.ReconnectCeil <= 0 {
		opts.ReconnectCeil = 30 * time.Second
	}
	if err := validate.Struct(opts); err != nil {
		return opts, err
	}
	return opts, nil
}
