// Package curriculum describes what a K-5 quiz can ask about: the topics
// of each subject per grade, their display names and subtopics.
package curriculum

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Subject is a curriculum subject key.
type Subject string

const (
	Mathematics Subject = "mathematics"
	English     Subject = "english"
)

// MinGrade and MaxGrade bound the supported grades.
const (
	MinGrade = 1
	MaxGrade = 5
)

// Topic is one entry in a grade's ordered topic list.
type Topic struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// Catalog is the parsed curriculum.
type Catalog struct {
	Grades      map[int]map[Subject][]Topic     `yaml:"grades"`
	SubtopicMap map[Subject]map[string][]string `yaml:"subtopics"`
}

//go:embed curriculum.yaml
var embedded []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded curriculum. It panics if the embedded
// document is invalid, which a test guards against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embedded)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded curriculum: %v", defaultErr))
	}
	return defaultCatalog
}

// Parse decodes a curriculum document and checks that every topic has
// subtopics.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	for grade, subjects := range c.Grades {
		for subject, topics := range subjects {
			if len(topics) == 0 {
				return nil, fmt.Errorf("grade %d %s: no topics", grade, subject)
			}
			for _, t := range topics {
				if len(c.SubtopicMap[subject][t.Key]) == 0 {
					return nil, fmt.Errorf("grade %d %s: topic %q has no subtopics", grade, subject, t.Key)
				}
			}
		}
	}
	return &c, nil
}

// GradeList returns the configured grades in ascending order.
func (c *Catalog) GradeList() []int {
	out := make([]int, 0, len(c.Grades))
	for g := range c.Grades {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Subjects returns the subjects offered in grade, sorted by key.
func (c *Catalog) Subjects(grade int) []Subject {
	subjects := c.Grades[grade]
	out := make([]Subject, 0, len(subjects))
	for s := range subjects {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Topics returns the ordered topic keys for a grade and subject.
func (c *Catalog) Topics(grade int, subject Subject) ([]string, error) {
	topics, ok := c.Grades[grade][subject]
	if !ok {
		return nil, fmt.Errorf("no %s curriculum for grade %d", subject, grade)
	}
	keys := make([]string, len(topics))
	for i, t := range topics {
		keys[i] = t.Key
	}
	return keys, nil
}

// DisplayName returns the grade-specific name of a topic, or the key itself
// when the topic is not part of that grade.
func (c *Catalog) DisplayName(grade int, subject Subject, topic string) string {
	for _, t := range c.Grades[grade][subject] {
		if t.Key == topic {
			return t.Name
		}
	}
	return topic
}

// Subtopics returns the subtopics of a subject's topic.
func (c *Catalog) Subtopics(subject Subject, topic string) ([]string, error) {
	subs, ok := c.SubtopicMap[subject][topic]
	if !ok {
		return nil, fmt.Errorf("unknown %s topic %q", subject, topic)
	}
	return slices.Clone(subs), nil
}

// Validate checks that topic belongs to the grade's list for subject.
func (c *Catalog) Validate(subject Subject, grade int, topic string) error {
	if grade < MinGrade || grade > MaxGrade {
		return fmt.Errorf("grade %d out of range %d-%d", grade, MinGrade, MaxGrade)
	}
	topics, err := c.Topics(grade, subject)
	if err != nil {
		return err
	}
	if !slices.Contains(topics, topic) {
		return fmt.Errorf("topic %q is not part of grade %d %s", topic, grade, subject)
	}
	return nil
}
