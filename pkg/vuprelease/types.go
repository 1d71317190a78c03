package vuprelease

import (
	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/engine"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/version"
)

// Type aliases re-export the engine and tier types as the public API.
// Users import "github.com/vup-linux/vup-release/pkg/vuprelease" and use
// vuprelease.PruneResult, vuprelease.AssetStore, etc.

type FileAction = engine.FileAction
type FileError = engine.FileError
type PruneResult = engine.PruneResult
type SignatureResult = engine.SignatureResult
type ReconcileResult = engine.ReconcileResult
type DownloadResult = engine.DownloadResult
type StatusReport = engine.StatusReport
type PackageStatus = engine.PackageStatus

type DownloadOptions = engine.DownloadOptions
type PruneOptions = engine.PruneOptions
type ReconcileOptions = engine.ReconcileOptions

type Identity = artifact.Identity
type Snapshot = artifact.Snapshot
type Entry = artifact.Entry

type Tier = remote.Tier
type TierError = remote.TierError
type AssetStore = remote.AssetStore
type ObjectStore = remote.ObjectStore

type Key = version.Key
type Order = version.Order
type Oracle = version.Oracle

// Constructors and sentinels for implementing custom tiers and oracles.
var (
	Parse       = artifact.Parse
	NewSnapshot = artifact.NewSnapshot
	ObjectKey   = remote.ObjectKey
	ReleaseTag  = remote.ReleaseTag

	ErrNotFound           = remote.ErrNotFound
	ErrUnreachable        = remote.ErrUnreachable
	ErrCredentialsMissing = remote.ErrCredentialsMissing
	ErrIndeterminate      = version.ErrIndeterminate
	ErrUnparseable        = artifact.ErrUnparseable
)
