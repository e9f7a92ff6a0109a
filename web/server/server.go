package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/loaders"
	"github.com/df07/go-csg-raytracer/pkg/renderer"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

const defaultScene = "default"

// Limits of the render parameters accepted over HTTP
const (
	minImageSize = 16
	maxImageSize = 2000
	maxDepth     = 32
	maxBlockSize = 64
)

// Server handles web requests for the raytracer
type Server struct {
	port   int
	echo   *echo.Echo
	logger core.Logger

	mu      sync.Mutex
	renders map[string]func() // Render ID -> cancel
	active  *activeRender
}

// NewServer creates a new web server. Static files are served from
// staticDir when it is not empty.
func NewServer(port int, staticDir string) *Server {
	s := &Server{
		port:    port,
		echo:    echo.New(),
		logger:  renderer.NewDefaultLogger(),
		renders: make(map[string]func()),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	if staticDir != "" {
		s.echo.Static("/", staticDir)
	}

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/scenes", s.handleScenes)
	api.GET("/scene-config", s.handleSceneConfig)
	api.GET("/describe", s.handleDescribe)
	api.GET("/render", s.handleRender)
	api.DELETE("/render/:id", s.handleCancel)
	api.GET("/inspect", s.handleInspect)
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	return s.echo.Start(addr)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files on disk
func (s *Server) handleScenes(c echo.Context) error {
	scenes, err := scene.ListAllScenes(scene.FindScenesDir(), s.logger)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, scenes)
}

// handleSceneConfig returns the stored settings of a scene together with the
// limits the render endpoint accepts
func (s *Server) handleSceneConfig(c echo.Context) error {
	id := sceneParam(c)
	sc, err := loaders.OpenScene(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	config := sc.SamplingConfig
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scene": id,
		"defaults": map[string]interface{}{
			"width":                  config.Width,
			"height":                 config.Height,
			"adaptiveSupersampling":  config.AdaptiveSupersampling,
			"supersamplingThreshold": config.SupersamplingThreshold,
			"subSamplingSize":        config.SubSamplingSize,
			"recursionDepth":         config.RecursionDepth,
			"shadowDistribution":     config.ShadowDistribution,
			"background":             renderer.FormatColor(config.Background),
			"primitiveCount":         sc.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":          map[string]int{"min": minImageSize, "max": maxImageSize},
			"recursionDepth":  map[string]int{"min": 0, "max": maxDepth},
			"subSamplingSize": map[string]int{"min": 1, "max": maxBlockSize},
		},
	})
}

// handleDescribe returns the description text of a scene
func (s *Server) handleDescribe(c echo.Context) error {
	sc, err := loaders.OpenScene(sceneParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.String(http.StatusOK, strings.Join(loaders.DescribeScene(sc), "\n")+"\n")
}

func sceneParam(c echo.Context) string {
	if id := c.QueryParam("scene"); id != "" {
		return id
	}
	return defaultScene
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
