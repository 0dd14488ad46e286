package version

import (
	"runtime"
	"runtime/debug"
)

// ModulePath 是本项目的模块路径
const ModulePath = "github.com/anzhiyu-c/anheyu-photos"

// 以下变量可在构建时通过 -ldflags "-X" 注入
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// BuildInfo 是版本接口返回的构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func GetVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown (no build info)"
	}
	if buildInfo.Main.Version == "" {
		return "(devel)"
	}
	return buildInfo.Main.Version
}

// GetVersionString 返回带提交号的版本字符串
func GetVersionString() string {
	v := GetVersion()
	if c := commit(); c != "" {
		return v + " (" + c + ")"
	}
	return v
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   GetVersion(),
		Commit:    commit(),
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// commit 优先使用注入的提交号，否则读取 vcs.revision
func commit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return ""
}
