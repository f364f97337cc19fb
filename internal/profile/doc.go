// Package profile persists the monitor configuration between runs.
//
// The profile is a YAML file under the user's config directory
// (~/.config/comsniff/profile.yaml on Linux). It stores both channel
// configurations plus the capture settings. A missing profile is not an
// error; defaults apply until the user saves one with `monitor --save`.
package profile
