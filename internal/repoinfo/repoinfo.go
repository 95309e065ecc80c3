// Package repoinfo derives a repository identity for scan results from the
// git metadata of the scanned tree.
package repoinfo

import (
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// Info describes the repository a scan root belongs to. Fields that cannot
// be determined are left empty, except Name which always falls back to the
// base name of the scan root.
type Info struct {
	Name     string `json:"name" yaml:"name"`
	FullName string `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Branch   string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit   string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Root     string `json:"root" yaml:"root"`
}

// Label is the repository name recorded on a scan result: the remote's
// owner/name when known, the directory name otherwise.
func (i Info) Label() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Name
}

// Resolve inspects path and the git repository enclosing it. It never fails:
// a tree outside git, or one without an origin remote, yields an Info built
// from the directory alone.
func Resolve(path string) Info {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.Clean(abs)
	info := Info{Name: filepath.Base(abs), Root: abs}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logf("%s is not inside a git repository: %v", abs, err)
		return info
	}

	if wt, err := repo.Worktree(); err == nil {
		info.Root = filepath.Clean(wt.Filesystem.Root())
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
		info.Commit = head.Hash().String()
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		logf("no origin remote for %s: %v", info.Root, err)
		return info
	}
	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return info
	}
	applyRemote(&info, cfg.URLs[0])
	return info
}

// applyRemote fills the name fields from a remote URL. Hosts go-vcsurl does
// not recognise fall back to trimming the URL path by hand.
func applyRemote(info *Info, url string) {
	if v, err := vcsurl.Parse(url); err == nil {
		info.Host = string(v.Host)
		if v.FullName != "" {
			info.FullName = v.FullName
		}
		if v.Name != "" {
			info.Name = v.Name
		}
		return
	}

	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 && i < len(trimmed)-1 {
		info.Name = trimmed[i+1:]
	}
	logf("unrecognised remote %q, using name %s", url, info.Name)
}
