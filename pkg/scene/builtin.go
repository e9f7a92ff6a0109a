package scene

import (
	"sort"

	"github.com/samber/lo"
)

// builtinScene describes a scene constructed in code
type builtinScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Spheres over a checkered floor with a soft light",
		},
		build: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "csg",
			Name:        "CSG Showcase",
			Description: "Boolean combinations of quadrics and clipping planes",
		},
		build: NewCSGScene,
	},
	{
		info: SceneInfo{
			ID:          "cornell",
			Name:        "Cornell Box",
			Description: "Cornell box with a mirror and a glass sphere",
		},
		build: NewCornellScene,
	},
	{
		info: SceneInfo{
			ID:          "tessellated",
			Name:        "Tessellated Solid",
			Description: "Signed distance solid tessellated into a triangle mesh",
		},
		build: NewTessellatedScene,
	},
}

// Builtin returns a freshly built scene for a builtin scene ID
func Builtin(id string) (*Scene, bool) {
	b, ok := lo.Find(builtinScenes, func(b builtinScene) bool { return b.info.ID == id })
	if !ok {
		return nil, false
	}
	return b.build(), true
}

// BuiltinIDs returns the IDs of every builtin scene, sorted
func BuiltinIDs() []string {
	ids := lo.Map(builtinScenes, func(b builtinScene, _ int) string { return b.info.ID })
	sort.Strings(ids)
	return ids
}

func builtinInfos() []SceneInfo {
	return lo.Map(builtinScenes, func(b builtinScene, _ int) SceneInfo {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		return info
	})
}
