package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/loaders"
	"github.com/df07/go-csg-raytracer/pkg/material"
	"github.com/df07/go-csg-raytracer/pkg/renderer"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Kind         string                 `json:"kind"` // "Entry" or "Exit"
	Material     string                 `json:"material"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

// inspectPixel casts the primary ray through the centre of a pixel and
// reports the nearest surface it hits
func inspectPixel(sc *scene.Scene, width, height, x, y int) InspectResponse {
	ray := sc.Camera.GetRay(width, height, float64(x)+0.5, float64(y)+0.5)
	hit := sc.Nearest(ray)
	if !hit.Hit() {
		return InspectResponse{Hit: false}
	}

	response := InspectResponse{
		Hit:      true,
		Kind:     hit.Kind.String(),
		Point:    vecArray(hit.Point),
		Normal:   vecArray(hit.Normal),
		Distance: hit.T,
	}
	if hit.Material != nil {
		response.Material = hit.Material.Name
		response.MaterialType = hit.Material.Kind.String()
		response.Properties = extractMaterialInfo(hit.Material.PropertiesAt(hit.Point))
	}
	return response
}

// extractMaterialInfo lists the shading properties in effect at a hit
func extractMaterialInfo(p material.Properties) map[string]interface{} {
	properties := map[string]interface{}{
		"diffuse":   renderer.FormatColor(p.Diffuse),
		"specular":  renderer.FormatColor(p.Specular),
		"ambient":   renderer.FormatColor(p.Ambient),
		"shininess": p.Shininess,
	}
	if p.Reflectance > 0 {
		properties["reflectance"] = p.Reflectance
		properties["reflectionDistribution"] = p.ReflectionDistribution
	}
	if p.Transparency > 0 {
		properties["transparency"] = p.Transparency
		properties["refractionIndex"] = p.RefractionIndex
		properties["refractionDistribution"] = p.RefractionDistribution
	}
	return properties
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// handleInspect handles object inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	sc, err := loaders.OpenScene(sceneParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	values := c.QueryParams()
	width, err := parseIntParam(values, "width", sc.SamplingConfig.Width, minImageSize, maxImageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	height, err := parseIntParam(values, "height", sc.SamplingConfig.Height, minImageSize, maxImageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	x, err := parseIntParam(values, "x", -1, 0, width-1)
	if err != nil || x < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "x must be a pixel column of the image")
	}
	y, err := parseIntParam(values, "y", -1, 0, height-1)
	if err != nil || y < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "y must be a pixel row of the image")
	}

	return c.JSON(http.StatusOK, inspectPixel(sc, width, height, x, y))
}
