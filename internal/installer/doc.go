// Package installer sequences a TinyTeX installation: download, unpack,
// symlink configuration through tlmgr, package installation and activation
// script emission.
//
// The distribution is only considered installed once its completion marker
// has been written; a directory without the marker is left over from an
// interrupted run and is purged before a fresh install.
package installer
