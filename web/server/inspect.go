package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Kind         string                 `json:"kind,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Distance     float64                `json:"distance"`
	Color        string                 `json:"color"` // Shaded centre sample as #rrggbb
	Material     map[string]interface{} `json:"material,omitempty"`
}

// extractMaterialInfo classifies a material by its dominant response and lists its coefficients
func extractMaterialInfo(m material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"diffuse":         hexColor(m.DiffuseColor),
		"specular":        hexColor(m.SpecularColor),
		"ambient":         m.AmbientIntensity,
		"kd":              m.DiffuseCoefficient,
		"ks":              m.Shininess,
		"exponent":        m.SpecularExponent,
		"diffusiveness":   m.Diffusiveness,
		"reflectiveness":  m.Reflectiveness,
		"transparency":    m.Transparency,
		"translucency":    m.Translucency,
		"refractionIndex": m.RefractionIndex,
	}

	switch {
	case m.Transparency > core.Epsilon:
		return "glass", properties
	case m.Reflectiveness > core.Epsilon:
		return "mirror", properties
	default:
		return "phong", properties
	}
}

func hexColor(c core.Color) string {
	rgba := c.ToRGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func newInspectResponse(info renderer.PixelInspection) InspectResponse {
	response := InspectResponse{Hit: info.Hit, Color: hexColor(info.Color)}
	if !info.Hit {
		return response
	}
	response.Kind = info.Kind
	response.MaterialType, response.Material = extractMaterialInfo(info.Material)
	response.Point = [3]float64{info.Point.X, info.Point.Y, info.Point.Z}
	response.Normal = [3]float64{info.Normal.X, info.Normal.Y, info.Normal.Z}
	response.UV = [2]float64{info.UV.X, info.UV.Y}
	response.Distance = info.Distance
	return response
}

// handleInspect casts the centre ray of a pixel and reports what it hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	raytracer, err := s.newRaytracer(req, nil)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	info, err := raytracer.InspectPixel(pixelX, pixelY)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, renderer.ErrPixelOutOfRange) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInspectResponse(info))
}
