package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/temirov/quote-pipeline/internal/ledger"
	"github.com/temirov/quote-pipeline/internal/pipeline"
)

const (
	emptyModelsErrorMessage                  = "config.models is empty"
	missingDefaultModelErrorMessage          = "no default model found (set models[].default: true)"
	rootConfigurationEmptyContentErrorFormat = "root configuration %s is empty"
	rootConfigurationUnmarshalErrorFormat    = "unmarshal root configuration %s: %w"
	rootConfigurationInvalidErrorFormat      = "invalid root configuration %s: %w"
	fieldValidationErrorFormat               = "config.%s %s"
	duplicateStageErrorFormat                = "stage %q configured more than once"
	unknownStageModelErrorFormat             = "stage %q references unknown model %q"
	unknownStageToolErrorFormat              = "stage %q references unknown tool %q"
	rootNamespacePrefix                      = "Root."
)

var rootValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	return v
}

type Root struct {
	Common  Common  `yaml:"common"`
	Company Company `yaml:"company"`
	Models  []Model `yaml:"models" validate:"dive"`
	Stages  []Stage `yaml:"stages" validate:"dive"`
}

type Common struct {
	API struct {
		Endpoint  string `yaml:"endpoint" validate:"required,url"`
		APIKeyEnv string `yaml:"api_key_env" validate:"required"`
	} `yaml:"api"`
	Logging struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	} `yaml:"logging"`
	Defaults struct {
		TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=0"`
		Concurrency    int `yaml:"concurrency" validate:"gte=0"`
	} `yaml:"defaults"`
}

// Company is the business the stage workers act for.
type Company struct {
	Name string `yaml:"name"`
}

type Model struct {
	Name                string  `yaml:"name" validate:"required"`
	Provider            string  `yaml:"provider"`
	ModelID             string  `yaml:"model_id" validate:"required"`
	Default             bool    `yaml:"default"`
	SupportsTemperature bool    `yaml:"supports_temperature"`
	DefaultTemperature  float64 `yaml:"default_temperature" validate:"gte=0,lte=2"`
	MaxCompletionTokens int     `yaml:"max_completion_tokens" validate:"gte=0"`
}

// Stage customizes one pipeline stage. Empty fields keep the built-in
// behavior.
type Stage struct {
	Name         string   `yaml:"name" validate:"required,oneof=inventory quoting ordering"`
	Model        string   `yaml:"model"`
	Description  string   `yaml:"description"`
	Instructions string   `yaml:"instructions"`
	Tools        []string `yaml:"tools"`
}

// LoadRoot parses the provided configuration source and validates it.
func LoadRoot(source RootConfigurationSource) (Root, error) {
	if len(source.Content) == 0 {
		return Root{}, fmt.Errorf(rootConfigurationEmptyContentErrorFormat, source.Reference)
	}

	var rootConfiguration Root
	if err := yaml.Unmarshal(source.Content, &rootConfiguration); err != nil {
		return Root{}, fmt.Errorf(rootConfigurationUnmarshalErrorFormat, source.Reference, err)
	}
	if err := rootConfiguration.Validate(); err != nil {
		return Root{}, fmt.Errorf(rootConfigurationInvalidErrorFormat, source.Reference, err)
	}
	return rootConfiguration, nil
}

// Validate applies field rules and cross references between sections.
func (root Root) Validate() error {
	if len(root.Models) == 0 {
		return errors.New(emptyModelsErrorMessage)
	}
	if err := rootValidator.Struct(root); err != nil {
		return formatValidationErrors(err)
	}
	if _, ok := root.DefaultModel(); !ok {
		return errors.New(missingDefaultModelErrorMessage)
	}
	seenStages := map[string]bool{}
	for _, stage := range root.Stages {
		if seenStages[stage.Name] {
			return fmt.Errorf(duplicateStageErrorFormat, stage.Name)
		}
		seenStages[stage.Name] = true
		if stage.Model != "" {
			if _, ok := root.FindModel(stage.Model); !ok {
				return fmt.Errorf(unknownStageModelErrorFormat, stage.Name, stage.Model)
			}
		}
		for _, toolName := range stage.Tools {
			if _, ok := ledger.LookupTool(toolName); !ok {
				return fmt.Errorf(unknownStageToolErrorFormat, stage.Name, toolName)
			}
		}
	}
	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]error, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := strings.TrimPrefix(fieldError.Namespace(), rootNamespacePrefix)
		messages = append(messages, fmt.Errorf(fieldValidationErrorFormat, field, validationMessage(fieldError)))
	}
	return errors.Join(messages...)
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fieldError.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fieldError.Param())
	}
	return "is invalid"
}

func (root Root) DefaultModel() (Model, bool) {
	for _, modelConfiguration := range root.Models {
		if modelConfiguration.Default {
			return modelConfiguration, true
		}
	}
	return Model{}, false
}

func (root Root) FindModel(name string) (Model, bool) {
	for _, modelConfiguration := range root.Models {
		if modelConfiguration.Name == name {
			return modelConfiguration, true
		}
	}
	return Model{}, false
}

// StageSettings returns the configured stage with its model resolved and its
// tool list defaulted.
func (root Root) StageSettings(stage pipeline.Stage) (Stage, Model) {
	settings := Stage{Name: string(stage)}
	for _, configured := range root.Stages {
		if configured.Name == string(stage) {
			settings = configured
			break
		}
	}
	if len(settings.Tools) == 0 {
		settings.Tools = ledger.DefaultToolNames(stage)
	}
	model, ok := root.FindModel(settings.Model)
	if !ok {
		model, _ = root.DefaultModel()
	}
	return settings, model
}

// Preambles collects the instruction overrides keyed by stage.
func (root Root) Preambles() map[pipeline.Stage]string {
	preambles := map[pipeline.Stage]string{}
	for _, configured := range root.Stages {
		if strings.TrimSpace(configured.Instructions) != "" {
			preambles[pipeline.Stage(configured.Name)] = configured.Instructions
		}
	}
	return preambles
}
