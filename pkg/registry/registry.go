// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks that ids and task types are present and unique and that
// every input schema compiles. All problems are reported together.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			errs = append(errs, errors.New("activity missing required field: id"))
		} else if ids[activity.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity id: %s", activity.ID))
		}
		ids[activity.ID] = true

		if activity.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s: missing taskType", activity.ID))
		} else if taskTypes[activity.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate taskType: %s", activity.TaskType))
		}
		taskTypes[activity.TaskType] = true

		if _, err := activity.CompileInputSchema(); err != nil {
			errs = append(errs, fmt.Errorf("activity %s: %w", activity.ID, err))
		}
	}
	return errors.Join(errs...)
}

// CompileInputSchema compiles the activity's input JSON schema.
func (a Activity) CompileInputSchema() (*gojsonschema.Schema, error) {
	if len(a.InputSchema) == 0 {
		return nil, errors.New("missing inputSchema")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid inputSchema: %w", err)
	}
	return schema, nil
}
