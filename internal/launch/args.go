// Package launch prepares and starts the game server: it finds the server
// jar, weaves it, and runs java on the result.
package launch

import (
	"strings"
)

// MainClass is the server entry point.
const MainClass = "com.hypixel.hytale.Main"

// DefaultServerJar is used when neither a flag nor the environment names one.
const DefaultServerJar = "HytaleServer.jar"

// ServerJarFlag names the server jar on hyinit's command line.
const ServerJarFlag = "--server-jar"

// ConfigFlag names hyinit's config file on the launch command line.
const ConfigFlag = "--hyinit-config"

// ownFlags are consumed by hyinit and never reach the server, which
// rejects options it does not know.
var ownFlags = []string{ServerJarFlag, ConfigFlag}

func ownFlag(arg string) (name string, inline bool) {
	for _, f := range ownFlags {
		if arg == f {
			return f, false
		}
		if strings.HasPrefix(arg, f+"=") {
			return f, true
		}
	}
	return "", false
}

// FlagValue returns the value of the last occurrence of one of hyinit's own
// flags, in either "--flag value" or "--flag=value" form.
func FlagValue(args []string, flag string) string {
	found := ""
	for i := 0; i < len(args); i++ {
		name, inline := ownFlag(args[i])
		if name != flag {
			continue
		}
		if inline {
			found = strings.TrimPrefix(args[i], flag+"=")
		} else if i+1 < len(args) {
			found = args[i+1]
			i++
		}
	}
	return found
}

// LocateServerJar picks the server jar: the last --server-jar argument,
// then env, then DefaultServerJar.
func LocateServerJar(args []string, env string) string {
	if found := FlagValue(args, ServerJarFlag); found != "" {
		return found
	}
	if env != "" {
		return env
	}
	return DefaultServerJar
}

// StripArgs removes hyinit's own flags and their values.
func StripArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline := ownFlag(args[i])
		if name == "" {
			out = append(out, args[i])
			continue
		}
		if !inline {
			i++
		}
	}
	return out
}
