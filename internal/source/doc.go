// Package source produces JPEG frames for the stream server.
//
// A [Source] returns the next encoded frame on every call to Next. Three
// sources are provided:
//
//   - [FileSource]: the same file every frame, optionally reloaded when the
//     file changes on disk
//   - [DirectorySource]: the JPEG files of a directory in name order, looping
//   - [RotateSource]: one image turned 180 degrees and re-encoded every frame
//
// [Pump] drives a source at a fixed frame rate and hands each frame to a
// send function, normally [framecast.Server.Send].
package source
