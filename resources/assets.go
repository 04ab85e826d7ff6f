// Package resources embeds the application icons.
package resources

import (
	"embed"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"
)

const logoDir = "logo/"

const (
	LogoIdle    = "gamertimer.svg"
	LogoRunning = "gamertimer-running.svg"
)

//go:embed logo/*.svg
var logoFS embed.FS

var logoCache sync.Map

// Logo returns a Fyne resource for the given logo file.
func Logo(fileName string) (fyne.Resource, error) {
	path := logoDir + fileName
	if cached, ok := logoCache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := logoFS.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load resource %s", path)
	}

	resource := fyne.NewStaticResource(fileName, data)
	logoCache.Store(path, resource)
	return resource, nil
}

// MustLogo returns a Fyne resource or panics on error.
func MustLogo(fileName string) fyne.Resource {
	resource, err := Logo(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}
