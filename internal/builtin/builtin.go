// Package builtin holds the patches hyinit applies to the server itself so
// that it runs under hyinit's loader.
package builtin

import (
	"fmt"

	"hyinit/internal/patch"
)

// Source tags every built-in patch in the registry.
const Source = "hyinit"

const (
	MainClass         = "com/hypixel/hytale/Main"
	PluginClassLoader = "com/hypixel/hytale/server/core/plugin/PluginClassLoader"

	// ManifestResource is hidden from plugin resource lookups; the loader
	// already exposes every early plugin's copy.
	ManifestResource = "manifest.json"
)

var (
	getParent    = patch.Member{Owner: "java/lang/ClassLoader", Name: "getParent", Desc: "()Ljava/lang/ClassLoader;"}
	getResource  = patch.Member{Owner: "java/lang/ClassLoader", Name: "getResource", Desc: "(Ljava/lang/String;)Ljava/net/URL;"}
	getResources = patch.Member{Owner: "java/lang/ClassLoader", Name: "getResources", Desc: "(Ljava/lang/String;)Ljava/util/Enumeration;"}
)

// Decls returns the built-in declarations in registration order.
func Decls() []*patch.Decl {
	return []*patch.Decl{
		// The transforming loader's parent cannot load platform classes;
		// the loader itself stands in for it.
		patch.Declare("hyinit:main-loader-parent").
			From(Source).
			Target(MainClass, "launchWithTransformingClassLoader", "([Ljava/lang/String;)V").
			Redirect(getParent, patch.AllOrdinals),

		patch.Declare("hyinit:plugin-manifest-resource").
			From(Source).
			Target(PluginClassLoader, "getResource", getResource.Desc).
			Redirect(getResource, patch.AllOrdinals, blockManifest(patch.Ins("aconst_null"))...),

		patch.Declare("hyinit:plugin-manifest-resources").
			From(Source).
			Target(PluginClassLoader, "getResources", getResources.Desc).
			Redirect(getResources, patch.AllOrdinals, blockManifest(
				patch.Call("invokestatic", "java/util/Collections", "emptyEnumeration", "()Ljava/util/Enumeration;", false),
			)...),
	}
}

// blockManifest expects (loader, name) on the stack. For the manifest
// resource it drops both and runs empty; otherwise it makes the call.
func blockManifest(empty ...patch.Op) []patch.Op {
	ops := []patch.Op{
		patch.Ins("dup"),
		patch.LdcString(ManifestResource),
		patch.Call("invokevirtual", "java/lang/String", "equalsIgnoreCase", "(Ljava/lang/String;)Z", false),
		patch.Jump("ifeq", "call"),
		patch.Ins("pop2"),
	}
	ops = append(ops, empty...)
	return append(ops,
		patch.Jump("goto", "end"),
		patch.Mark("call"),
		patch.Proceed(),
		patch.Mark("end"),
	)
}

// Register adds every built-in patch to r.
func Register(r *patch.Registry) error {
	for _, d := range Decls() {
		if err := d.Register(r); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}
