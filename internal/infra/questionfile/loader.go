package questionfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sot015/ocp-quiz-app/internal/domain"
)

// Loader reads the YAML question bank from disk on every Load, so the
// facilitator can edit the file between rounds without restarting the
// process.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

type bankFile struct {
	Questions []domain.Question `yaml:"questions"`
}

func (l *Loader) Load(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", l.path, err)
	}
	return bank.Questions, nil
}
