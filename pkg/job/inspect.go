package job

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/pkg/errors"
)

// Inspection describes the first surface seen through a pixel center
type Inspection struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType,omitempty"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Light        bool           `json:"light"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// Inspect casts a ray through the center of pixel (x, y), row 0 at the top
func (j *Job) Inspect(x, y int) (Inspection, error) {
	cfg := j.Config
	if x < 0 || x >= cfg.Width || y < 0 || y >= cfg.Height {
		return Inspection{}, errors.Errorf("pixel (%d, %d) outside %dx%d image", x, y, cfg.Width, cfg.Height)
	}

	s := (float64(x) + 0.5) / float64(cfg.Width)
	t := 1 - (float64(y)+0.5)/float64(cfg.Height)
	ray := j.Scene.Camera.GetRay(s, t)

	var rec material.HitRecord
	if !j.Scene.Intersect(ray, integrator.TMin, integrator.TMax, &rec) {
		return Inspection{Hit: false}, nil
	}

	props := map[string]any{}
	materialType, materialProps := materialInfo(rec.Material)
	props["material"] = materialProps

	// The tree reports the hit, not the primitive, so find the one at the same distance
	geometryType := "unknown"
	var candidate material.HitRecord
	for _, prim := range j.Scene.AllElements() {
		if prim.Hit(ray, integrator.TMin, rec.T+1e-9, &candidate) && candidate.T == rec.T {
			var geometryProps map[string]any
			geometryType, geometryProps = geometryInfo(prim)
			props["geometry"] = geometryProps
			break
		}
	}

	return Inspection{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec(rec.Point),
		Normal:       vec(rec.Normal),
		Distance:     rec.T,
		FrontFace:    rec.FrontFace,
		Light:        rec.Material.CountsAsLight(),
		Properties:   props,
	}, nil
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// materialInfo extracts detailed material information with type assertions
func materialInfo(mat material.Material) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := mat.(type) {
	case *material.Diffuse:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "diffuse", properties
	case *material.Metal:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["roughness"] = m.Roughness
		return "metal", properties
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties
	case *material.Emissive:
		properties["emission"] = vec(m.Color.Multiply(m.Intensity))
		properties["color"] = hexColor(m.Color)
		properties["intensity"] = m.Intensity
		return "emissive", properties
	case *material.Normal:
		return "normal", properties
	case *material.World:
		return "world", properties
	default:
		return "unknown", properties
	}
}

// geometryInfo extracts detailed geometry information
func geometryInfo(prim geometry.Primitive) (string, map[string]any) {
	properties := make(map[string]any)
	bbox := prim.BoundingBox()
	properties["boundingBox"] = map[string]any{
		"min": vec(bbox.Min),
		"max": vec(bbox.Max),
	}

	switch g := prim.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(g.Center)
		properties["radius"] = g.Radius
		return "sphere", properties
	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec(g.V0), vec(g.V1), vec(g.V2)}
		properties["normal"] = vec(g.Normal())
		return "triangle", properties
	default:
		return "unknown", properties
	}
}
