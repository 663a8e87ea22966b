// Package config loads the YAML seed file that describes the system metadata workflow
// definitions are validated against.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

var ErrInvalidSeed = errors.New("invalid seed")

// SeedFile is the structure of a seed YAML file.
type SeedFile struct {
	ArtifactTypes []ArtifactTypeConfig `yaml:"artifact_types"`
	PropertyTypes []PropertyTypeConfig `yaml:"property_types"`
	Projects      []ProjectConfig      `yaml:"projects"`
	Users         []UserConfig         `yaml:"users"`
	Groups        []GroupConfig        `yaml:"groups"`
}

type ArtifactTypeConfig struct {
	ID            int64   `yaml:"id"`
	Name          string  `yaml:"name"`
	Prefix        string  `yaml:"prefix"`
	BaseType      string  `yaml:"base_type"`
	PropertyTypes []int64 `yaml:"property_types"`
}

// PropertyTypeConfig keeps numbers and dates as strings so they reach decimal and time
// parsing untouched by YAML scalar resolution.
type PropertyTypeConfig struct {
	ID            int64              `yaml:"id"`
	Name          string             `yaml:"name"`
	PrimitiveType string             `yaml:"primitive_type"`
	Required      bool               `yaml:"required"`
	Validated     bool               `yaml:"validated"`
	MultipleValue bool               `yaml:"multiple"`
	MinNumber     string             `yaml:"min_number"`
	MaxNumber     string             `yaml:"max_number"`
	DecimalPlaces *int               `yaml:"decimal_places"`
	MinDate       string             `yaml:"min_date"`
	MaxDate       string             `yaml:"max_date"`
	ValidValues   []ValidValueConfig `yaml:"valid_values"`
}

type ValidValueConfig struct {
	ID    int64  `yaml:"id"`
	Value string `yaml:"value"`
}

type ProjectConfig struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type UserConfig struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

type GroupConfig struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	ProjectID *int64 `yaml:"project_id"`
}

// Seed is the decoded system metadata.
type Seed struct {
	StandardTypes *models.StandardTypes
	Projects      []*models.Project
	Users         []*models.User
	Groups        []*models.Group
}

// LoadSeed reads and converts a seed YAML file.
func LoadSeed(filepath string) (*Seed, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", filepath, err)
	}

	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seedFile SeedFile

	err := yaml.Unmarshal(data, &seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
	}

	err = ValidateSeedFile(seedFile)
	if err != nil {
		return nil, err
	}

	return seedFile.toSeed()
}

// ValidateSeedFile checks that every entry is identified and that artifact types only
// reference declared property types.
func ValidateSeedFile(seedFile SeedFile) error {
	propertyIDs := make(map[int64]bool, len(seedFile.PropertyTypes))

	for i, property := range seedFile.PropertyTypes {
		if property.ID <= 0 || property.Name == "" {
			return fmt.Errorf("%w: property_types[%d]: id and name are required", ErrInvalidSeed, i)
		}

		if !models.PrimitiveType(property.PrimitiveType).IsKnown() {
			return fmt.Errorf("%w: property_types[%d]: unknown primitive type '%s'",
				ErrInvalidSeed, i, property.PrimitiveType)
		}

		propertyIDs[property.ID] = true
	}

	for i, artifactType := range seedFile.ArtifactTypes {
		if artifactType.ID <= 0 || artifactType.Name == "" {
			return fmt.Errorf("%w: artifact_types[%d]: id and name are required", ErrInvalidSeed, i)
		}

		for _, id := range artifactType.PropertyTypes {
			if !propertyIDs[id] {
				return fmt.Errorf("%w: artifact_types[%d]: unknown property type %d", ErrInvalidSeed, i, id)
			}
		}
	}

	for i, project := range seedFile.Projects {
		if project.ID <= 0 || project.Path == "" {
			return fmt.Errorf("%w: projects[%d]: id and path are required", ErrInvalidSeed, i)
		}
	}

	for i, user := range seedFile.Users {
		if user.ID <= 0 || user.Name == "" {
			return fmt.Errorf("%w: users[%d]: id and name are required", ErrInvalidSeed, i)
		}
	}

	for i, group := range seedFile.Groups {
		if group.ID <= 0 || group.Name == "" {
			return fmt.Errorf("%w: groups[%d]: id and name are required", ErrInvalidSeed, i)
		}
	}

	return nil
}

func (f SeedFile) toSeed() (*Seed, error) {
	seed := &Seed{
		StandardTypes: &models.StandardTypes{
			ArtifactTypes: make([]*models.ArtifactType, 0, len(f.ArtifactTypes)),
			PropertyTypes: make([]*models.PropertyType, 0, len(f.PropertyTypes)),
		},
		Projects: make([]*models.Project, 0, len(f.Projects)),
		Users:    make([]*models.User, 0, len(f.Users)),
		Groups:   make([]*models.Group, 0, len(f.Groups)),
	}

	for _, artifactType := range f.ArtifactTypes {
		seed.StandardTypes.ArtifactTypes = append(seed.StandardTypes.ArtifactTypes, &models.ArtifactType{
			ID:              artifactType.ID,
			Name:            artifactType.Name,
			Prefix:          artifactType.Prefix,
			BaseType:        models.ArtifactBaseType(artifactType.BaseType),
			PropertyTypeIDs: artifactType.PropertyTypes,
		})
	}

	for _, property := range f.PropertyTypes {
		converted, err := property.toPropertyType()
		if err != nil {
			return nil, err
		}

		seed.StandardTypes.PropertyTypes = append(seed.StandardTypes.PropertyTypes, converted)
	}

	for _, project := range f.Projects {
		seed.Projects = append(seed.Projects, &models.Project{ID: project.ID, Name: project.Name, Path: project.Path})
	}

	for _, user := range f.Users {
		seed.Users = append(seed.Users, &models.User{ID: user.ID, Name: user.Name, DisplayName: user.DisplayName})
	}

	for _, group := range f.Groups {
		seed.Groups = append(seed.Groups, &models.Group{ID: group.ID, Name: group.Name, ProjectID: group.ProjectID})
	}

	return seed, nil
}

func (p PropertyTypeConfig) toPropertyType() (*models.PropertyType, error) {
	property := &models.PropertyType{
		ID:                p.ID,
		Name:              p.Name,
		PrimitiveType:     models.PrimitiveType(p.PrimitiveType),
		IsRequired:        p.Required,
		IsValidated:       p.Validated,
		IsMultipleAllowed: p.MultipleValue,
		DecimalPlaces:     p.DecimalPlaces,
	}

	var err error

	property.MinNumber, err = parseNumber(p.MinNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: property type %d min_number: %w", ErrInvalidSeed, p.ID, err)
	}

	property.MaxNumber, err = parseNumber(p.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: property type %d max_number: %w", ErrInvalidSeed, p.ID, err)
	}

	property.MinDate, err = parseDate(p.MinDate)
	if err != nil {
		return nil, fmt.Errorf("%w: property type %d min_date: %w", ErrInvalidSeed, p.ID, err)
	}

	property.MaxDate, err = parseDate(p.MaxDate)
	if err != nil {
		return nil, fmt.Errorf("%w: property type %d max_date: %w", ErrInvalidSeed, p.ID, err)
	}

	for _, value := range p.ValidValues {
		property.ValidValues = append(property.ValidValues, models.ValidValue{ID: value.ID, Value: value.Value})
	}

	return property, nil
}

func parseNumber(text string) (*decimal.Decimal, error) {
	if text == "" {
		return nil, nil
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return nil, err
	}

	return &value, nil
}

func parseDate(text string) (*time.Time, error) {
	if text == "" {
		return nil, nil
	}

	value, err := time.Parse(dateLayout, text)
	if err != nil {
		return nil, err
	}

	return &value, nil
}
