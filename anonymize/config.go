package anonymize

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/vdparikh/cryptopan"
	"gopkg.in/yaml.v3"
)

// KeyEnvironmentVariable is read when the configuration does not carry a key.
const KeyEnvironmentVariable = "CRYPTOPAN_KEY"

// Configuration describes the configuration for the anonymizer.
type Configuration struct {
	// Enabled tells if addresses should be anonymized at all
	Enabled bool
	// Key is the 32-byte Crypto-PAn key, base64-encoded or as a raw
	// 32-character string. When empty, KeyEnvironmentVariable is used.
	Key string `validate:"omitempty,cryptopan_key"`
	// Cache is the number of anonymized addresses to keep around
	Cache int `validate:"min=1"`
}

// DefaultConfiguration represents the default configuration for the anonymizer.
func DefaultConfiguration() Configuration {
	return Configuration{
		Enabled: true,
		Cache:   65536,
	}
}

// String hides the key.
func (c Configuration) String() string {
	key := ""
	if c.Key != "" {
		key = "<redacted>"
	}
	return fmt.Sprintf("{Enabled:%t Key:%s Cache:%d}", c.Enabled, key, c.Cache)
}

// Validate is the validator used for configurations.
var Validate *validator.Validate

func init() {
	Validate = validator.New()
	Validate.RegisterValidation("cryptopan_key", isCryptoPAnKey)
}

func isCryptoPAnKey(fl validator.FieldLevel) bool {
	return len(decodeKey(fl.Field().String())) == cryptopan.KeySize
}

// decodeKey accepts either the base64 encoding of the key or the raw key.
func decodeKey(s string) []byte {
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == cryptopan.KeySize {
		return key
	}
	return []byte(s)
}

// DecodeConfiguration decodes a raw configuration (as produced by a YAML or
// JSON decoder) on top of config and validates the result. Keys are matched
// case-insensitively, dashes ignored. Unknown keys are an error.
func DecodeConfiguration(raw any, config *Configuration) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		MatchName:        matchName,
		DecodeHook:       ConfigurationUnmarshallerHook(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := Validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ParseConfiguration parses a YAML document on top of the default
// configuration.
func ParseConfiguration(data []byte) (Configuration, error) {
	config := DefaultConfiguration()
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return config, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if raw == nil {
		return config, Validate.Struct(config)
	}
	if err := DecodeConfiguration(raw, &config); err != nil {
		return config, err
	}
	return config, nil
}

// ConfigurationUnmarshallerHook normalizes the anonymizer configuration:
//   - replace cache-size by cache
func ConfigurationUnmarshallerHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Value) (interface{}, error) {
		if from.Kind() != reflect.Map || from.IsNil() || to.Type() != reflect.TypeOf(Configuration{}) {
			return from.Interface(), nil
		}

		// cache-size → cache
		var oldKey, newKey *reflect.Value
		fromMap := from.MapKeys()
		for i, k := range fromMap {
			if k.Kind() == reflect.Interface {
				k = k.Elem()
			}
			if k.Kind() != reflect.String {
				return from.Interface(), nil
			}
			if matchName(k.String(), "CacheSize") {
				oldKey = &fromMap[i]
			} else if matchName(k.String(), "Cache") {
				newKey = &fromMap[i]
			}
		}
		if oldKey != nil && newKey != nil {
			return nil, fmt.Errorf("cannot have both %q and %q", oldKey.String(), newKey.String())
		}
		if oldKey != nil {
			from.SetMapIndex(reflect.ValueOf("cache"), from.MapIndex(*oldKey))
			from.SetMapIndex(*oldKey, reflect.Value{})
		}

		return from.Interface(), nil
	}
}

// matchName tells if map key and field names are equal.
func matchName(mapKey, fieldName string) bool {
	key := strings.ToLower(strings.ReplaceAll(mapKey, "-", ""))
	field := strings.ToLower(fieldName)
	return key == field
}
