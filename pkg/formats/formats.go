// Package formats implements the engine's binary asset layouts: the mesh
// file (deduplicated vertex buffer + triangle indices) and the skeleton
// file (joint hierarchy + sampled animation clips).
//
// Both layouts are versionless and little-endian, with no magic or header.
// All conditional fields are mesh-wide: the three boolean flags in the mesh
// header decide the vertex stride for the whole file, never per vertex.
package formats
