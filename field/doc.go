// Package field holds the particle-state pipeline: sampling foreground pixels
// out of a raster, building the particle table and easing every particle
// towards its active target once per frame.
package field
