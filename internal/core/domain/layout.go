package domain

import (
	"path"
	"slices"
	"strings"
)

// Well-known package folders.
const (
	IncludeDir = "include"
	LibDir     = "lib"
	BinDir     = "bin"
)

// Header extensions per support-source folder.
const (
	CommonHeaderExt = ".hpp"
	ObjCHeaderExt   = ".h"
	JNIHeaderExt    = ".hpp"
)

// SupportSources locates the headers that are shipped from the source tree
// rather than produced by the build.
type SupportSources struct {
	// Common holds the platform-agnostic headers.
	Common string `json:"common"`
	// ObjC holds the Objective-C bridging headers.
	ObjC string `json:"objc"`
	// JNI holds the JNI bridging headers.
	JNI string `json:"jni"`
}

// HeaderSet copies every file with Ext directly inside Source into Dest.
type HeaderSet struct {
	Source string
	Dest   string
	Ext    string
}

// LibraryRule routes build artifacts with Ext into Dest, dropping their directories.
type LibraryRule struct {
	Ext  string
	Dest string
}

var libraryRules = []LibraryRule{
	{Ext: ".a", Dest: LibDir},
	{Ext: ".so", Dest: LibDir},
	{Ext: ".dylib", Dest: LibDir},
	{Ext: ".lib", Dest: LibDir},
	{Ext: ".dll", Dest: BinDir},
}

// LayoutPlan is the desired package tree for one platform. Paths inside the
// package are slash-separated and relative to Root.
type LayoutPlan struct {
	Root      string
	Namespace string
	// Folders are created in order. The namespace folder must not exist beforehand.
	Folders     []string
	Headers     []HeaderSet
	Libraries   []LibraryRule
	ToolArchive string
}

// NamespaceDir returns the package-relative common header folder.
func (p LayoutPlan) NamespaceDir() string {
	return path.Join(IncludeDir, p.Namespace)
}

// LibraryDest returns the folder a library artifact named name belongs in.
func (p LayoutPlan) LibraryDest(name string) (string, bool) {
	ext := path.Ext(name)
	for _, r := range p.Libraries {
		if r.Ext == ext {
			return r.Dest, true
		}
	}
	return "", false
}

// HasFolder reports whether the plan creates the given package-relative folder.
func (p LayoutPlan) HasFolder(rel string) bool {
	return slices.Contains(p.Folders, rel)
}

// PlanLayout computes the package tree for a platform without touching the disk.
// Bridging header folders are planned only for the platform that uses them.
func PlanLayout(p Platform, root, namespace string, support SupportSources, toolArchive string) LayoutPlan {
	ns := path.Join(IncludeDir, namespace)
	plan := LayoutPlan{
		Root:        root,
		Namespace:   namespace,
		Folders:     []string{ns},
		Headers:     []HeaderSet{{Source: support.Common, Dest: ns, Ext: CommonHeaderExt}},
		Libraries:   slices.Clone(libraryRules),
		ToolArchive: toolArchive,
	}

	switch p.Family() {
	case FamilyIOS:
		dir := path.Join(ns, "objc")
		plan.Folders = append(plan.Folders, dir)
		plan.Headers = append(plan.Headers, HeaderSet{Source: support.ObjC, Dest: dir, Ext: ObjCHeaderExt})
	case FamilyAndroid:
		dir := path.Join(ns, "jni")
		plan.Folders = append(plan.Folders, dir)
		plan.Headers = append(plan.Headers, HeaderSet{Source: support.JNI, Dest: dir, Ext: JNIHeaderExt})
	case FamilyDesktop, FamilyMacos:
	}

	plan.Folders = append(plan.Folders, LibDir, BinDir)
	return plan
}

// PackageLayout is a package tree realized on disk.
type PackageLayout struct {
	Root    string   `json:"root"`
	Folders []string `json:"folders"`
	// Files are package-relative, slash-separated, sorted.
	Files []string `json:"files"`
}

// FilesIn returns the files placed directly inside the package-relative folder dir.
func (l PackageLayout) FilesIn(dir string) []string {
	var res []string
	for _, f := range l.Files {
		if path.Dir(f) == dir {
			res = append(res, f)
		}
	}
	return res
}

var linkableExts = []string{".a", ".so", ".dylib", ".lib"}

// CollectLibs derives link names from library files: the directory, the
// extension and a leading "lib" (except for .lib import libraries) are removed.
func CollectLibs(files []string) []string {
	var libs []string
	for _, f := range files {
		base := path.Base(f)
		ext := path.Ext(base)
		if !slices.Contains(linkableExts, ext) {
			continue
		}
		name := strings.TrimSuffix(base, ext)
		if ext != ".lib" {
			name = strings.TrimPrefix(name, "lib")
		}
		if name != "" {
			libs = append(libs, name)
		}
	}
	slices.Sort(libs)
	return slices.Compact(libs)
}

// PackageMetadata describes a package to its consumers.
type PackageMetadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	License     string   `json:"license,omitempty"`
	Description string   `json:"description,omitempty"`
	Libs        []string `json:"libs"`
	IncludeDirs []string `json:"include_dirs"`
}

// NewPackageMetadata derives consumer metadata from a realized layout.
func NewPackageMetadata(info PackageInfo, layout PackageLayout) PackageMetadata {
	return PackageMetadata{
		Name:        info.Name,
		Version:     info.Version,
		License:     info.License,
		Description: info.Description,
		Libs:        CollectLibs(layout.FilesIn(LibDir)),
		IncludeDirs: []string{IncludeDir},
	}
}
