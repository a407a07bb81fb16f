// Package config loads grid maps for the gridsearch command.
//
// A map comes from a YAML file, is then adjusted by environment variables and
// finally validated:
//
//	width: 30
//	height: 30
//	obstacles:
//	  - {x: 3, y: 4}
//	random:
//	  count: 100
//	  seed: 42
//	costs:
//	  move: 1.0
//	  turn: 0.5
//	priority: [north, east, south, west]
//
// Environment overrides: GRIDSEARCH_SEED, GRIDSEARCH_OBSTACLES (random obstacle
// count) and GRIDSEARCH_PRIORITY (comma separated orientations).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/gridsearch"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid map config")

// MaxCells bounds width x height. Grids are materialised cell by cell when
// obstacles are scattered.
const MaxCells = 1 << 22

// MapConfig describes a grid and its search parameters.
type MapConfig struct {
	Width     int           `yaml:"width" validate:"gte=1,lte=65536"`
	Height    int           `yaml:"height" validate:"gte=1,lte=65536"`
	Obstacles []Cell        `yaml:"obstacles" validate:"dive"`
	Random    *RandomConfig `yaml:"random" validate:"omitnil"`
	Costs     CostConfig    `yaml:"costs"`
	Priority  []string      `yaml:"priority" validate:"max=4,unique,dive,orientation"`
}

// Cell is an obstacle position.
type Cell struct {
	X int `yaml:"x" validate:"gte=0"`
	Y int `yaml:"y" validate:"gte=0"`
}

// RandomConfig asks for seeded random obstacles on top of the listed ones.
type RandomConfig struct {
	Count int   `yaml:"count" validate:"gte=0"`
	Seed  int64 `yaml:"seed"`
}

// CostConfig holds the action costs.
type CostConfig struct {
	Move float64 `yaml:"move" validate:"gt=0"`
	Turn float64 `yaml:"turn" validate:"gt=0"`
}

var mapValidate *validator.Validate

func init() {
	mapValidate = validator.New()
	_ = mapValidate.RegisterValidation("orientation", validateOrientation)
	mapValidate.RegisterStructValidation(validateObstacleBounds, MapConfig{})
}

func validateOrientation(fl validator.FieldLevel) bool {
	_, err := gridsearch.ParseOrientation(fl.Field().String())
	return err == nil
}

func validateObstacleBounds(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(MapConfig)
	if cfg.Width*cfg.Height > MaxCells {
		sl.ReportError(cfg.Width, "Width", "Width", "maxcells", strconv.Itoa(MaxCells))
	}
	for i, c := range cfg.Obstacles {
		if c.X >= cfg.Width || c.Y >= cfg.Height {
			sl.ReportError(cfg.Obstacles[i], fmt.Sprintf("Obstacles[%d]", i), "Obstacles", "inbounds", "")
		}
	}
}

// Default returns a 30x30 map without obstacles and the default costs.
func Default() MapConfig {
	return MapConfig{
		Width:  30,
		Height: 30,
		Costs: CostConfig{
			Move: gridsearch.DefaultMoveCost,
			Turn: gridsearch.DefaultTurnCost,
		},
		Priority: []string{"north", "east", "south", "west"},
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (MapConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read map file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse map file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *MapConfig) error {
	if v := os.Getenv("GRIDSEARCH_OBSTACLES"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GRIDSEARCH_OBSTACLES=%q", ErrInvalidConfig, v)
		}
		cfg.random().Count = count
	}
	if v := os.Getenv("GRIDSEARCH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: GRIDSEARCH_SEED=%q", ErrInvalidConfig, v)
		}
		cfg.random().Seed = seed
	}
	if v := os.Getenv("GRIDSEARCH_PRIORITY"); v != "" {
		cfg.Priority = SplitList(v)
	}
	return nil
}

func (c *MapConfig) random() *RandomConfig {
	if c.Random == nil {
		c.Random = &RandomConfig{}
	}
	return c.Random
}

// Validate checks field ranges, orientation names and obstacle bounds. Priority
// names are lower-cased in place.
func (c MapConfig) Validate() error {
	for i := range c.Priority {
		c.Priority[i] = strings.ToLower(strings.TrimSpace(c.Priority[i]))
	}
	if err := mapValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// PriorityOrder converts the priority names to orientations.
func (c MapConfig) PriorityOrder() ([]gridsearch.Orientation, error) {
	order := make([]gridsearch.Orientation, 0, len(c.Priority))
	for _, name := range c.Priority {
		o, err := gridsearch.ParseOrientation(name)
		if err != nil {
			return nil, err
		}
		order = append(order, o)
	}
	return order, nil
}

// Build creates the grid. Cells in keepFree are never picked for random
// obstacles; the caller passes the start and goal positions there.
func (c MapConfig) Build(keepFree ...gridsearch.Position) (*gridsearch.Grid, error) {
	options := []gridsearch.GridOption{
		gridsearch.WithMoveCost(c.Costs.Move),
		gridsearch.WithTurnCost(c.Costs.Turn),
	}
	obstacles := make([]gridsearch.Position, 0, len(c.Obstacles))
	for _, cell := range c.Obstacles {
		obstacles = append(obstacles, gridsearch.Position{X: cell.X, Y: cell.Y})
	}
	options = append(options, gridsearch.WithObstacles(obstacles...))
	if c.Random != nil && c.Random.Count > 0 {
		options = append(options, gridsearch.WithRandomObstacles(c.Random.Count, c.Random.Seed, keepFree...))
	}

	grid, err := gridsearch.NewGrid(c.Width, c.Height, options...)
	if err != nil {
		return nil, err
	}

	order, err := c.PriorityOrder()
	if err != nil {
		return nil, err
	}
	if len(order) > 0 {
		if err := grid.SetExpansionPriority(order); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
