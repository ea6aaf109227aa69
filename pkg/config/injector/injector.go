package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/raywall/fast-yaml-filter/pkg/awsconf"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type Injector struct {
	ssm     SSMClient
	secrets SecretsClient
}

type Option func(*Injector)

// WithSSM define o cliente usado para ${ssm.*}.
func WithSSM(c SSMClient) Option {
	return func(i *Injector) { i.ssm = c }
}

// WithSecrets define o cliente usado para ${secret.*}.
func WithSecrets(c SecretsClient) Option {
	return func(i *Injector) { i.secrets = c }
}

// New cria o injector. Sem clientes explícitos, os clientes reais da AWS são
// criados apenas quando uma referência ssm/secret aparece.
func New(opts ...Option) *Injector {
	i := &Injector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject percorre target (ponteiro para struct) resolvendo tags env e
// interpolações ${...} em strings, slices e mapas.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)
			if !value.CanSet() {
				continue
			}

			// 1. Tags env:"..." têm precedência sobre o YAML
			if tag := field.Tag.Get("env"); tag != "" {
				if val, exists := os.LookupEnv(tag); exists {
					if err := setField(value, val); err != nil {
						return fmt.Errorf("campo %s: %w", field.Name, err)
					}
					continue
				}
			}

			// 2. Recursão (strings são interpoladas no próprio case)
			if err := i.injectRecursive(ctx, value); err != nil {
				return err
			}
		}

	case reflect.String:
		if v.CanSet() {
			newValue, err := i.interpolateString(ctx, v.String())
			if err != nil {
				return err
			}
			v.SetString(newValue)
		}

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr // Captura erro para retornar depois
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas dinâmicos (map[string]string e map[string]interface{})
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		newVal, err := i.injectDynamic(ctx, elem.Interface())
		if err != nil {
			return err
		}
		if newVal != nil {
			updates[iter.Key().String()] = reflect.ValueOf(newVal)
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val.Convert(v.Type().Elem()))
	}
	return nil
}

// injectDynamic trata valores vindos de YAML sem tipo (interface{}).
// Retorna nil quando não há substituição a fazer.
func (i *Injector) injectDynamic(ctx context.Context, val interface{}) (interface{}, error) {
	switch x := val.(type) {
	case string:
		if !strings.Contains(x, "${") {
			return nil, nil
		}
		return i.interpolateString(ctx, x)
	case map[string]interface{}:
		return nil, i.injectMap(ctx, reflect.ValueOf(x))
	case []interface{}:
		for idx, item := range x {
			newVal, err := i.injectDynamic(ctx, item)
			if err != nil {
				return nil, err
			}
			if newVal != nil {
				x[idx] = newVal
			}
		}
	}
	return nil, nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// Variável não encontrada retorna vazio
		return os.Getenv(key), nil

	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		decrypt := true
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           &key,
			WithDecryption: &decrypt,
		})
		if err != nil {
			return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			return "", fmt.Errorf("parâmetro SSM '%s' sem valor", key)
		}
		return *out.Parameter.Value, nil

	case "secret":
		client, err := i.secretsClient(ctx)
		if err != nil {
			return "", err
		}
		// Aceita ${secret.id#campo} para segredos em JSON
		secretID, jsonKey, _ := strings.Cut(key, "#")
		out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: &secretID,
		})
		if err != nil {
			return "", fmt.Errorf("erro no SecretsManager: %w", err)
		}
		if out.SecretString == nil {
			return "", fmt.Errorf("segredo '%s' sem SecretString", secretID)
		}
		if jsonKey == "" {
			return *out.SecretString, nil
		}
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(*out.SecretString), &data); err != nil {
			return "", fmt.Errorf("segredo '%s' não é JSON: %w", secretID, err)
		}
		return fmt.Sprintf("%v", data[jsonKey]), nil
	}

	return "", fmt.Errorf("origem de injeção desconhecida: %s", sourceType)
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	if i.ssm == nil {
		cfg, err := awsconf.Get(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return nil, err
		}
		i.ssm = ssm.NewFromConfig(cfg)
	}
	return i.ssm, nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	if i.secrets == nil {
		cfg, err := awsconf.Get(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return nil, err
		}
		i.secrets = secretsmanager.NewFromConfig(cfg)
	}
	return i.secrets, nil
}

func setField(field reflect.Value, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Bool:
		field.SetBool(val == "true" || val == "1")
	default:
		return fmt.Errorf("tipo não suportado para tag env: %s", field.Kind())
	}
	return nil
}
