// Package item models production items: the assets, shots and general
// files a project is made of. An Item ties a decoded name to the folder
// tree it lives in and answers where its step folders and files are.
//
// Asset and shot items own a dedicated item folder named
// project_TYPE_object, with one subfolder per production step. General
// items have no dedicated folder; their working folder is the item folder.
package item

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// Item is a production item located on disk.
type Item struct {
	// Type is the item type (general, asset or shot).
	Type naming.ItemType

	// Project is the project short name.
	Project string

	// ShortName identifies the item: the asset or shot short name, or the
	// step short name for general items.
	ShortName string

	// Group is the asset group folder name. Empty for shots and general items.
	Group string

	// Folder is the absolute path to the item folder. For general items
	// this is the working folder holding the files themselves.
	Folder string

	grammar  *naming.Grammar
	resolver *paths.Resolver
}

// New creates an item rooted at a known folder.
func New(typ naming.ItemType, project, shortName, folder string, grammar *naming.Grammar, resolver *paths.Resolver) *Item {
	return &Item{
		Type:      typ,
		Project:   project,
		ShortName: shortName,
		Folder:    folder,
		grammar:   grammar,
		resolver:  resolver,
	}
}

// FromPath builds the item owning any managed path: a working file, an
// archived version, a published copy or a preview. The item folder is
// found by walking up from the save file path; when no folder in the
// ancestry carries an item folder name the file is treated as a general
// item living directly in its working folder.
func FromPath(path string, grammar *naming.Grammar, resolver *paths.Resolver) (*Item, error) {
	save, err := resolver.SaveFilePath(path, grammar)
	if err != nil {
		return nil, err
	}
	c, err := grammar.Decode(filepath.Base(save))
	if err != nil {
		return nil, err
	}

	saveFolder := filepath.Dir(save)

	if c.Type == naming.ItemGeneral {
		return New(naming.ItemGeneral, c.Project, c.Step, saveFolder, grammar, resolver), nil
	}

	itemFolder := saveFolder
	if !naming.IsItemFolderName(filepath.Base(itemFolder)) {
		// Probably a step subfolder; try one level up.
		parent := filepath.Dir(itemFolder)
		if !naming.IsItemFolderName(filepath.Base(parent)) {
			return New(naming.ItemGeneral, c.Project, c.Step, saveFolder, grammar, resolver), nil
		}
		itemFolder = parent
	}

	it := New(c.Type, c.Project, c.Object, itemFolder, grammar, resolver)
	if c.Type == naming.ItemAsset {
		it.Group = filepath.Base(filepath.Dir(itemFolder))
	}
	return it, nil
}

// FolderName returns the canonical item folder name (project_TYPE_object).
// General items have no dedicated folder and return "".
func (it *Item) FolderName() string {
	if it.Type == naming.ItemGeneral {
		return ""
	}
	return strings.Join([]string{it.Project, string(it.Type), it.ShortName}, "_")
}

// StepFolderName returns the folder name holding a step's files
// (project_TYPE_object_step). Empty for general items.
func (it *Item) StepFolderName(step string) string {
	if it.Type == naming.ItemGeneral || step == "" {
		return ""
	}
	return naming.Encode(naming.Components{
		Project: it.Project,
		Type:    it.Type,
		Object:  it.ShortName,
		Step:    step,
		Version: naming.NoVersion,
	})
}

// StepFolder returns the path to a step's folder without creating it.
// General items keep all their files in the item folder itself.
func (it *Item) StepFolder(step string) string {
	if name := it.StepFolderName(step); name != "" {
		return filepath.Join(it.Folder, name)
	}
	return it.Folder
}

// EnsureStepFolder returns the step folder, creating it when missing.
func (it *Item) EnsureStepFolder(step string) (string, error) {
	folder := it.StepFolder(step)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	return folder, nil
}

// StepFiles lists the working files of a step belonging to this item,
// sorted by name. A missing step folder yields an empty list.
func (it *Item) StepFiles(step string) ([]string, error) {
	return it.listOwned(it.StepFolder(step), step)
}

// StepFilePath returns the path of a specific step file, or "" when no
// such file exists on disk.
func (it *Item) StepFilePath(step, resource, extension string) string {
	c := naming.Components{
		Project:   it.Project,
		Type:      it.Type,
		Step:      step,
		Resource:  resource,
		Version:   naming.NoVersion,
		Extension: extension,
	}
	if it.Type == naming.ItemGeneral {
		c.Step = it.ShortName
	} else {
		c.Object = it.ShortName
	}

	path := filepath.Join(it.StepFolder(step), naming.Encode(c))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return path
}

// PublishFolder returns the publish folder of a step without creating it.
func (it *Item) PublishFolder(step string) string {
	return it.reservedFolder(paths.KindPublish, step)
}

// PreviewFolder returns the preview folder of a step without creating it.
func (it *Item) PreviewFolder(step string) string {
	return it.reservedFolder(paths.KindPreview, step)
}

// VersionsFolder returns the versions folder of a step without creating it.
func (it *Item) VersionsFolder(step string) string {
	return it.reservedFolder(paths.KindVersions, step)
}

// reservedFolder locates a reserved folder under the step folder.
func (it *Item) reservedFolder(kind paths.Kind, step string) string {
	probe := filepath.Join(it.StepFolder(step), "probe")
	folder, err := it.resolver.Locate(kind, probe)
	if err != nil {
		return ""
	}
	return folder
}

// PublishedFiles lists the published copies of a step belonging to this
// item, sorted by name.
func (it *Item) PublishedFiles(step string) ([]string, error) {
	return it.listOwned(it.PublishFolder(step), step)
}

// PreviewFiles lists the preview files of a step belonging to this item,
// sorted by name.
func (it *Item) PreviewFiles(step string) ([]string, error) {
	return it.listOwned(it.PreviewFolder(step), step)
}

// IsPublished reports whether a published copy exists for the given step
// and resource.
func (it *Item) IsPublished(step, resource string) (bool, error) {
	files, err := it.PublishedFiles(step)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		c, err := it.grammar.Decode(filepath.Base(f))
		if err != nil {
			continue
		}
		if naming.StripRestoredTag(c.Resource) == resource {
			return true, nil
		}
	}
	return false, nil
}

// listOwned lists the regular files in a folder whose decoded names belong
// to this item. Missing folders yield an empty list.
func (it *Item) listOwned(folder, step string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		c, err := it.grammar.Decode(e.Name())
		if err != nil {
			continue
		}
		if !it.owns(c, step) {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// owns reports whether decoded components belong to this item and step.
func (it *Item) owns(c naming.Components, step string) bool {
	if c.Project != it.Project || c.Type != it.Type {
		return false
	}
	if it.Type == naming.ItemGeneral {
		return c.Step == it.ShortName
	}
	return c.Object == it.ShortName && (step == "" || c.Step == step)
}
