// Package pluginkey normalizes plugin names into the canonical keys the
// dispatcher registers plugins under, and composes/splits the plugin$tag
// form used when one plugin is loaded multiple times with different tags.
package pluginkey
