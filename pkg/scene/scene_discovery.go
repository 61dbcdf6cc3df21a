package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const builtinGroup = "Built-in Scenes"

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

// ListBuiltinScenes describes the scenes Lookup can build
func ListBuiltinScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range BuiltinNames() {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			DisplayName: titleCase(name),
			Description: builtins[name].description,
			Group:       builtinGroup,
			Type:        "builtin",
		})
	}
	return scenes
}

// ListFileScenes scans dir for JSON scene descriptions. A missing directory yields no scenes.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Skip unreadable files, keep the rest
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// sceneMetadata is the descriptive header of a scene file
type sceneMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Variant     string `json:"variant"`
}

// ParseSceneMetadata reads the name, description, group and variant of a scene file.
// Missing fields fall back to values derived from the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:          fmt.Sprintf("file:%s", nameWithoutExt),
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        "file",
		FilePath:    filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, nil
	}

	var meta sceneMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return info, fmt.Errorf("invalid scene file: %w", err)
	}
	if meta.Name != "" {
		info.Name = meta.Name
	}
	if meta.Group != "" {
		info.Group = meta.Group
	}
	info.Description = meta.Description
	info.Variant = meta.Variant

	if info.Variant != "" {
		info.DisplayName = fmt.Sprintf("%s - %s", info.Name, info.Variant)
	} else {
		info.DisplayName = info.Name
	}
	return info, nil
}

// ListAllScenes returns built-in and file scenes, grouped by category.
// The built-in group comes first, the others follow alphabetically.
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListFileScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	allScenes := append(ListBuiltinScenes(), fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, s := range allScenes {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   builtinGroup,
			Scenes: builtInGroup,
		})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
