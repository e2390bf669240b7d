package sfdc

import "github.com/getmockd/imposter/pkg/config"

// Config declares one mocked SObject type. Response.File names the dataset
// holding its records.
type Config struct {
	config.BaseConfig `yaml:",inline"`

	SObjectName string `json:"sObjectName" yaml:"sObjectName" validate:"required"`
}
