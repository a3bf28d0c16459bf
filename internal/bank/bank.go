// Package bank loads question banks from YAML files. Every file is checked
// against a JSON schema and every question against its structural
// invariants before anything is returned.
//
// A bank file holds standalone questions, passage groups, or both:
//
//	questions:
//	  - id: inf-001
//	    topic: inference
//	    prompt: Which conclusion follows?
//	    options: ["True", "Probably true", "Insufficient data", "Probably false", "False"]
//	    correct: 2
//	passages:
//	  - topic: arguments
//	    text: Should all cities ban private cars from their centres?
//	    questions:
//	      - id: arg-001
//	        prompt: Cars pollute the air.
//	        options: [Strong, Weak]
//	        correct: 0
package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

// ValidationError reports a bank file that cannot be imported.
type ValidationError struct {
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question bank %s: %v", e.File, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type fileQuestion struct {
	ID          string   `yaml:"id"`
	Topic       string   `yaml:"topic"`
	Passage     string   `yaml:"passage"`
	Prompt      string   `yaml:"prompt"`
	Options     []string `yaml:"options"`
	Correct     int      `yaml:"correct"`
	Explanation string   `yaml:"explanation"`
}

type filePassage struct {
	Topic     string         `yaml:"topic"`
	Text      string         `yaml:"text"`
	Questions []fileQuestion `yaml:"questions"`
}

type file struct {
	Questions []fileQuestion `yaml:"questions"`
	Passages  []filePassage  `yaml:"passages"`
}

// Parse decodes and validates one bank file. name is used in errors only.
func Parse(name string, data []byte) ([]question.Question, error) {
	invalid := func(err error) error { return &ValidationError{File: name, Err: err} }

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalid(fmt.Errorf("parse YAML: %w", err))
	}
	if doc == nil {
		return nil, nil
	}
	if err := validateDoc(doc); err != nil {
		return nil, invalid(err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, invalid(fmt.Errorf("decode: %w", err))
	}

	var out []question.Question
	var errs []error
	add := func(fq fileQuestion, topicName, passage string) {
		t, err := topic.Parse(topicName)
		if err != nil {
			errs = append(errs, fmt.Errorf("question %s: %w", fq.ID, err))
			return
		}
		q := question.New(fq.ID, t, passage, fq.Prompt, fq.Options, fq.Correct, fq.Explanation)
		if err := q.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("question %s: %w", fq.ID, err))
			return
		}
		out = append(out, q)
	}
	for _, fq := range f.Questions {
		add(fq, fq.Topic, fq.Passage)
	}
	for _, p := range f.Passages {
		for _, fq := range p.Questions {
			add(fq, p.Topic, p.Text)
		}
	}
	if err := checkUnique(out); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, invalid(errors.Join(errs...))
	}
	return out, nil
}

// validateDoc runs the schema over a decoded YAML document. The document
// is round-tripped through JSON so numbers and maps have the shapes the
// validator expects.
func validateDoc(doc any) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert to JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func checkUnique(qs []question.Question) error {
	seen := make(map[string]bool, len(qs))
	var dups []string
	for _, q := range qs {
		if seen[q.ID] {
			dups = append(dups, q.ID)
		}
		seen[q.ID] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate question ids: %s", strings.Join(dups, ", "))
	}
	return nil
}

// LoadFile reads and validates a single bank file.
func LoadFile(path string) ([]question.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	return Parse(path, data)
}

// Load reads a bank file, or every .yaml and .yml file under a directory in
// lexical order. Question ids must be unique across all files.
func Load(path string) ([]question.Question, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bank dir: %w", err)
	}
	sort.Strings(files)

	var all []question.Question
	for _, f := range files {
		qs, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		slog.Debug("bank file loaded", "path", f, "questions", len(qs))
		all = append(all, qs...)
	}
	if err := checkUnique(all); err != nil {
		return nil, &ValidationError{File: path, Err: err}
	}
	return all, nil
}
