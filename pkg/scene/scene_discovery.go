package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

const (
	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"

	// FileExtension is the extension of scene description files
	FileExtension = ".scene"
	// FilePrefix marks scene IDs that refer to a file
	FilePrefix = "file:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// FindScenesDir returns the first existing scenes directory relative to the
// working directory, or "" when there is none
func FindScenesDir() string {
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListSceneFiles scans dir for scene description files. Files whose header
// cannot be read are reported through logger and skipped.
func ListSceneFiles(dir string, logger core.Logger) ([]SceneInfo, error) {
	if dir == "" {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+FileExtension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			logger.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseSceneMetadata extracts metadata from the leading "# Key: value"
// comment lines of a scene file
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       FilePrefix + base,
		Name:     titleCase(base),
		Group:    fileGroup,
		Type:     "file",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}

		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Scene":
			info.Name = value
		case "Variant":
			info.Variant = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	info.DisplayName = info.Name
	if info.Variant != "" {
		info.DisplayName = fmt.Sprintf("%s - %s", info.Name, info.Variant)
	}
	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes and the scene files in dir,
// grouped by category with the built-in group first
func ListAllScenes(dir string, logger core.Logger) (ScenesResponse, error) {
	var response ScenesResponse

	files, err := ListSceneFiles(dir, logger)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	groupMap := make(map[string][]SceneInfo)
	for _, info := range append(builtinInfos(), files...) {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for name := range groupMap {
		if name != builtinGroup {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)

	if scenes, ok := groupMap[builtinGroup]; ok {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: scenes})
	}
	for _, name := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
