package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/jdginn/go-room-doa/room"
)

// Validation helper functions
func validatePositive(field string, value float64) []ValidationError {
	if value <= 0 {
		return []ValidationError{{
			Field:   field,
			Message: "must be positive",
		}}
	}
	return nil
}

func validateNonNegative(field string, value float64) []ValidationError {
	if value < 0 {
		return []ValidationError{{
			Field:   field,
			Message: "must be non-negative",
		}}
	}
	return nil
}

func validateInRange(field string, value, min, max float64) []ValidationError {
	if value < min || value > max {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v", min, max),
		}}
	}
	return nil
}

func validateFinite(field string, values ...float64) []ValidationError {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return []ValidationError{{
				Field:   field,
				Message: "must be a finite number",
			}}
		}
	}
	return nil
}

// ValidationError represents a structured validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FormatValidationErrors groups errors by their top-level section
func FormatValidationErrors(errs []ValidationError) string {
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Validation Errors:\n")

	// Group errors by category, keeping the order they were found in
	var order []string
	categories := map[string][]ValidationError{}
	for _, err := range errs {
		category := strings.Split(err.Field, ".")[0]
		if _, seen := categories[category]; !seen {
			order = append(order, category)
		}
		categories[category] = append(categories[category], err)
	}

	for _, category := range order {
		b.WriteString(fmt.Sprintf("\n%s:\n", strings.ToUpper(category)))
		for _, err := range categories[category] {
			// Remove category prefix from field for cleaner display
			field := strings.TrimPrefix(err.Field, category+".")
			if field == category {
				field = "general"
			}
			b.WriteString(fmt.Sprintf("  - %s: %s\n", field, err.Message))
		}
	}

	return b.String()
}

// Validate performs validation on the entire configuration
func (c *SceneConfig) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, validatePositive("scale", c.Scale)...)
	errors = append(errors, c.Materials.Validate()...)
	errors = append(errors, c.Room.Validate(&c.Materials)...)
	if c.Room.Mesh != "" {
		errors = append(errors, c.SurfaceAssignments.Validate(&c.Materials)...)
	}
	errors = append(errors, c.Robot.Validate()...)
	errors = append(errors, validateMicrophones(c.Microphones, c.Robot.CircularMics)...)
	errors = append(errors, validateSources(c.Sources)...)
	errors = append(errors, c.Simulation.Validate()...)
	return errors
}

func (m *Materials) Validate() []ValidationError {
	var errors []ValidationError

	if m.Inline == nil && m.FromFile == "" {
		errors = append(errors, ValidationError{
			Field:   "materials",
			Message: "either inline or from_file must be specified",
		})
		return errors
	}

	for name, material := range m.Inline {
		if material.Absorption < 0 || material.Absorption > 1 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("materials.inline.%s.absorption", name),
				Message: "absorption coefficient must be between 0.0 and 1.0",
			})
		}
	}

	return errors
}

func (sa *SurfaceAssignments) Validate(materials *Materials) []ValidationError {
	var errors []ValidationError

	if sa.Inline == nil && sa.FromFile == "" {
		errors = append(errors, ValidationError{
			Field:   "surface_assignments",
			Message: "either inline or from_file must be specified",
		})
		return errors
	}

	if sa.Inline != nil {
		if _, hasDefault := sa.Inline[DEFAULT_MATERIAL]; !hasDefault {
			errors = append(errors, ValidationError{
				Field:   "surface_assignments.inline",
				Message: "must include a default material",
			})
		}

		for surface, material := range sa.Inline {
			if !materials.HasMaterial(material) {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("surface_assignments.inline.%s", surface),
					Message: fmt.Sprintf("references undefined material '%s'", material),
				})
			}
		}
	}

	return errors
}

func (r *RoomConfig) Validate(materials *Materials) []ValidationError {
	var errors []ValidationError

	errors = append(errors, validatePositive("room.height", r.Height)...)
	if r.Mesh == "" {
		if len(r.Corners) < 3 {
			errors = append(errors, ValidationError{
				Field:   "room.corners",
				Message: fmt.Sprintf("need at least 3 corners, got %d", len(r.Corners)),
			})
		} else {
			poly := make(room.Path2D, len(r.Corners))
			for i, c := range r.Corners {
				errors = append(errors, validateFinite(fmt.Sprintf("room.corners.%d", i), c.X, c.Y)...)
				poly[i] = room.Point2D{X: c.X, Y: c.Y}
			}
			if poly.Area() == 0 || !poly.IsSimple() {
				errors = append(errors, ValidationError{
					Field:   "room.corners",
					Message: "must form a simple polygon with non-zero area",
				})
			}
		}
		if materials.Inline != nil && materials.FromFile == "" && !materials.HasMaterial(r.Material) {
			errors = append(errors, ValidationError{
				Field:   "room.material",
				Message: fmt.Sprintf("references undefined material '%s'", r.Material),
			})
		}
	}

	return errors
}

func (r *Robot) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, validateFinite("robot.position", r.Position.X, r.Position.Y)...)
	errors = append(errors, validatePositive("robot.radius", r.Radius)...)
	return errors
}

func validateMicrophones(mics []Microphone, circular int) []ValidationError {
	if circular < 0 {
		return []ValidationError{{
			Field:   "robot.circular_mics",
			Message: "must be non-negative",
		}}
	}
	if len(mics) == 0 && circular == 0 {
		return []ValidationError{{
			Field:   "microphones",
			Message: "at least one microphone is required",
		}}
	}
	var errors []ValidationError
	for i, m := range mics {
		errors = append(errors, validateFinite(fmt.Sprintf("microphones.%d", i), m.NX, m.NY)...)
	}
	return errors
}

func validateSources(sources []Source) []ValidationError {
	var errors []ValidationError
	seen := map[string]bool{}
	placed := 0
	for i, s := range sources {
		if s.Name == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sources.%d.name", i),
				Message: "name is required",
			})
		} else if seen[s.Name] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sources.%d.name", i),
				Message: fmt.Sprintf("duplicate source name '%s'", s.Name),
			})
		}
		seen[s.Name] = true
		if s.Position != nil {
			placed++
			errors = append(errors, validateFinite(fmt.Sprintf("sources.%d.position", i), s.Position.X, s.Position.Y)...)
		}
	}
	if placed == 0 {
		errors = append(errors, ValidationError{
			Field:   "sources",
			Message: "at least one source must be placed",
		})
	}
	return errors
}

func (s *Simulation) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validatePositive("simulation.sample_rate", float64(s.SampleRate))...)
	if s.Rays != nil {
		errors = append(errors, validateNonNegative("simulation.rays", float64(*s.Rays))...)
	}
	if s.MaxOrder != nil {
		errors = append(errors, validateNonNegative("simulation.max_order", float64(*s.MaxOrder))...)
	}
	errors = append(errors, validatePositive("simulation.receiver_radius", s.ReceiverRadius)...)
	errors = append(errors, validateNonNegative("simulation.num_sources", float64(s.NumSources))...)
	errors = append(errors, validateInRange("simulation.min_separation_deg", s.MinSeparationDeg, 0, 180)...)
	if s.FreqRange[0] < 0 || s.FreqRange[0] >= s.FreqRange[1] || s.FreqRange[1] > float64(s.SampleRate)/2 {
		errors = append(errors, ValidationError{
			Field:   "simulation.freq_range",
			Message: fmt.Sprintf("must satisfy 0 <= low < high <= %d Hz", s.SampleRate/2),
		})
	}

	return errors
}
