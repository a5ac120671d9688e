package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Tag is set at link time with -ldflags "-X github.com/Joseda-hg/taskflow/internal/version.Tag=v1.2.3".
var Tag string

type Info struct {
	Tag      string
	Revision string
	BuildAt  string
	Dirty    bool
}

func Read() Info {
	info := Info{Tag: Tag}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			info.BuildAt = setting.Value
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	// go run and tests carry no VCS stamp
	if i.Revision == "" {
		return "dev"
	}

	revision := i.Revision
	if len(revision) > 7 {
		revision = revision[:7]
	}
	buildAt := i.BuildAt
	if t, err := time.Parse(time.RFC3339, buildAt); err == nil {
		buildAt = t.Format("2006-01-02 15:04:05")
	}

	s := fmt.Sprintf("%s %s at %s", i.Tag, revision, buildAt)
	if i.Tag == "" {
		s = fmt.Sprintf("%s at %s", revision, buildAt)
	}
	if i.Dirty {
		s += " dirty"
	}
	return s
}

func String() string {
	return Read().String()
}
