package meshclip

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the parameters of a pipeline call. The zero value is not
// useful; start from DefaultConfig or DefaultCorefineConfig.
type Config struct {
	// TargetEdgeLength is the edge length isotropic remeshing aims for.
	TargetEdgeLength float64 `toml:"target_edge_length"`
	// RemeshBefore refines the subject before clipping.
	RemeshBefore bool `toml:"remesh_before"`
	// RemeshAfter refines the clipped mesh.
	RemeshAfter bool `toml:"remesh_after"`
	// RemoveDegenerateFaces removes needles and caps after clipping.
	RemoveDegenerateFaces bool `toml:"remove_degenerate_faces"`
	// DuplicateVertexThreshold is the quantization step used on export.
	DuplicateVertexThreshold float64 `toml:"duplicate_vertex_threshold"`
	// AreaThreshold is the smallest area an exported triangle may have.
	AreaThreshold float64 `toml:"area_threshold"`
	// ProtectConstraints keeps constrained edges from being split.
	ProtectConstraints bool `toml:"protect_constraints"`
	// RelaxConstraints lets vertices slide along constrained polylines.
	RelaxConstraints bool `toml:"relax_constraints"`
	Iterations       int  `toml:"iterations"`
	Verbose          bool `toml:"verbose"`
	// SharedEdgeTolerance is the grid step used to match seam edges of two
	// corefined meshes by position. Zero requires equal coordinates.
	SharedEdgeTolerance float64 `toml:"shared_edge_tolerance"`

	// Logger receives the call's log output. When nil a stderr logger is
	// used at Debug level if Verbose is set and Warn level otherwise.
	Logger *log.Logger `toml:"-"`
}

// DefaultConfig returns the configuration used by the clip operations.
func DefaultConfig() Config {
	return Config{
		TargetEdgeLength:         10,
		RemeshBefore:             true,
		RemeshAfter:              true,
		RemoveDegenerateFaces:    true,
		DuplicateVertexThreshold: 1e-6,
		AreaThreshold:            1e-6,
		ProtectConstraints:       true,
		RelaxConstraints:         false,
		Iterations:               3,
	}
}

// DefaultCorefineConfig returns the configuration used by Corefine and Weld.
func DefaultCorefineConfig() Config {
	c := DefaultConfig()
	c.ProtectConstraints = false
	c.RelaxConstraints = true
	return c
}

// LoadConfig reads a TOML configuration file. Keys absent from the file
// keep the values of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return LoadConfigOver(path, DefaultConfig())
}

// LoadConfigOver reads a TOML configuration file over base.
func LoadConfigOver(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfigOver(b, base)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a TOML document over DefaultConfig and validates it.
func ParseConfig(b []byte) (Config, error) {
	return ParseConfigOver(b, DefaultConfig())
}

// ParseConfigOver decodes a TOML document over base and validates the
// result. Keys absent from the document keep the values of base.
func ParseConfigOver(b []byte, base Config) (Config, error) {
	cfg := base
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MarshalTOML encodes the serializable fields of c.
func (c Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	switch {
	case !(c.TargetEdgeLength > 0):
		return errors.New("target_edge_length must be positive")
	case !(c.DuplicateVertexThreshold >= 0):
		return errors.New("duplicate_vertex_threshold must not be negative")
	case !(c.AreaThreshold >= 0):
		return errors.New("area_threshold must not be negative")
	case !(c.SharedEdgeTolerance >= 0):
		return errors.New("shared_edge_tolerance must not be negative")
	case c.Iterations < 0:
		return errors.New("iterations must not be negative")
	}
	return nil
}

// logger returns the logger for a single call of operation op.
func (c Config) logger(op string) *log.Logger {
	l := c.Logger
	if l == nil {
		l = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "meshclip",
		})
		if c.Verbose {
			l.SetLevel(log.DebugLevel)
		} else {
			l.SetLevel(log.WarnLevel)
		}
	}
	return l.With("op", op, "run", uuid.NewString()[:8])
}
