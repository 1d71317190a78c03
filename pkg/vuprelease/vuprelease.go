// Package vuprelease provides the public Go library API for vup-release.
//
// vup-release keeps one canonical set of xbps packages converged across the
// local dist directory, the GitHub release of a {category}-{arch}-current
// line, and an S3-compatible bucket mirroring it. This package exposes the
// four reconciliation operations for embedding in other Go programs.
//
// # Basic Usage
//
//	client, err := vuprelease.New(vuprelease.Options{
//	    ConfigPath: "vup-release.yaml",
//	    Category:   "core",
//	    Arch:       "x86_64",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Fetch the current release into dist/
//	_, err = client.Download(ctx, vuprelease.DownloadOptions{})
//
//	// Keep only the newest build of every package
//	report, err := client.Prune(ctx, vuprelease.PruneOptions{})
//
//	// Converge the remote tiers
//	_, err = client.CleanRemote(ctx, vuprelease.ReconcileOptions{})
//	_, err = client.SyncObjectStore(ctx, vuprelease.ReconcileOptions{})
package vuprelease

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/config"
	"github.com/vup-linux/vup-release/internal/engine"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/runner"
	"github.com/vup-linux/vup-release/internal/version"
)

// Downloader populates the local tier from the asset store.
type Downloader interface {
	Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error)
}

// Pruner removes superseded packages and invalid signatures locally.
type Pruner interface {
	Prune(ctx context.Context, opts PruneOptions) (*PruneReport, error)
}

// RemoteCleaner deletes release assets absent from the local tier.
type RemoteCleaner interface {
	CleanRemote(ctx context.Context, opts ReconcileOptions) (*ReconcileResult, error)
}

// ObjectSyncer converges the object store toward the local tier.
type ObjectSyncer interface {
	SyncObjectStore(ctx context.Context, opts ReconcileOptions) (*ReconcileResult, error)
}

// PruneReport combines the package and signature passes of a prune.
type PruneReport struct {
	Packages   *PruneResult
	Signatures *SignatureResult
}

// Options configures a vup-release client. Settings resolve in this order,
// later winning: built-in defaults, the system, user and project config
// files, environment variables (CATEGORY, ARCH, R2_BUCKET, ...), then the
// explicit fields below.
type Options struct {
	// ConfigPath is the project config file. Missing is not an error.
	// Empty means vup-release.yaml is searched for from the working
	// directory up to the repository root.
	ConfigPath string

	// NoInherit skips the system and user config layers.
	NoInherit bool

	Dir        string
	Category   string
	Arch       string
	Repository string

	// Assets, Objects and Oracle replace the default implementations
	// (gh, minio-go and xbps-uhelper). Leave nil to use the defaults.
	Assets  AssetStore
	Objects ObjectStore
	Oracle  Oracle

	// Logger receives diagnostics. The zero value discards them.
	Logger zerolog.Logger
}

// Client is the main entry point for the vup-release library.
// It implements Downloader, Pruner, RemoteCleaner and ObjectSyncer.
type Client struct {
	cfg     *config.Config
	assets  AssetStore
	objects ObjectStore
	cmp     version.Comparator
	log     zerolog.Logger
}

var (
	_ Downloader    = (*Client)(nil)
	_ Pruner        = (*Client)(nil)
	_ RemoteCleaner = (*Client)(nil)
	_ ObjectSyncer  = (*Client)(nil)
)

// New creates a client for one release line.
func New(opts Options) (*Client, error) {
	cfg, _, err := config.LoadLayered(config.LoadOptions{
		DiscoverOptions: config.DiscoverOptions{ProjectPath: opts.ConfigPath},
		NoInherit:       opts.NoInherit,
	})
	if err != nil {
		return nil, err
	}
	if opts.Dir != "" {
		cfg.DistDir = opts.Dir
	}
	if opts.Category != "" {
		cfg.Category = opts.Category
	}
	if opts.Arch != "" {
		cfg.Arch = opts.Arch
	}
	if opts.Repository != "" {
		cfg.Repository = opts.Repository
	}
	if err := config.Check(config.Validate(cfg)); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		assets:  opts.Assets,
		objects: opts.Objects,
		log:     opts.Logger,
	}
	c.cmp = version.Comparator{Oracle: opts.Oracle, Log: opts.Logger}
	if opts.Oracle == nil {
		c.cmp.Oracle = defaultOracle(cfg)
	}
	return c, nil
}

// Tag returns the release line name, e.g. "core-x86_64-current".
func (c *Client) Tag() string {
	return c.cfg.Tag()
}

// Dir returns the local dist directory.
func (c *Client) Dir() string {
	return c.cfg.DistDir
}

// Download fetches the current release into the local directory. A release
// that does not exist yet yields a Fresh result.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	assets, err := c.assetStore()
	if err != nil {
		return nil, err
	}
	eng := &engine.DownloadEngine{Dir: c.cfg.DistDir, Assets: assets, Log: c.log}
	return eng.Download(ctx, c.Tag(), opts)
}

// Prune keeps the newest build of every package, then removes stale and
// orphaned signatures. Both passes run even if the first reports failures.
func (c *Client) Prune(ctx context.Context, opts PruneOptions) (*PruneReport, error) {
	pruner := &engine.PruneEngine{Dir: c.cfg.DistDir, Comparator: c.cmp, Log: c.log}
	pruned, pruneErr := pruner.Prune(ctx, opts)
	if pruned == nil {
		return nil, pruneErr
	}

	sigs := &engine.SignatureEngine{Dir: c.cfg.DistDir, Log: c.log}
	checked, sigErr := sigs.Validate(ctx, engine.SignatureOptions{DryRun: opts.DryRun})
	report := &PruneReport{Packages: pruned, Signatures: checked}
	return report, errors.Join(pruneErr, sigErr)
}

// CleanRemote deletes release assets that are absent locally.
func (c *Client) CleanRemote(ctx context.Context, opts ReconcileOptions) (*ReconcileResult, error) {
	assets, err := c.assetStore()
	if err != nil {
		return nil, err
	}
	eng := &engine.ReconcileEngine{Dir: c.cfg.DistDir, Assets: assets, Log: c.log}
	return eng.CleanAssets(ctx, c.Tag(), opts)
}

// SyncObjectStore uploads new or changed files to the bucket, then deletes
// objects that are absent locally.
func (c *Client) SyncObjectStore(ctx context.Context, opts ReconcileOptions) (*ReconcileResult, error) {
	objects, err := c.objectStore()
	if err != nil {
		return nil, err
	}
	eng := &engine.ReconcileEngine{Dir: c.cfg.DistDir, Objects: objects, Log: c.log}
	return eng.SyncObjects(ctx, c.Tag(), opts)
}

// Status reports the state of the local tier without changing it.
func (c *Client) Status(ctx context.Context) (*StatusReport, error) {
	eng := &engine.StatusEngine{Dir: c.cfg.DistDir, Comparator: c.cmp}
	return eng.Status(ctx)
}

func (c *Client) assetStore() (AssetStore, error) {
	if c.assets != nil {
		return c.assets, nil
	}
	if err := config.Check(config.ValidateAssetStore(c.cfg)); err != nil {
		return nil, err
	}
	c.assets = &remote.GitHubReleases{Repo: c.cfg.Repository, Runner: runner.ExecRunner{}}
	return c.assets, nil
}

func (c *Client) objectStore() (ObjectStore, error) {
	if c.objects != nil {
		return c.objects, nil
	}
	if err := config.Check(config.ValidateObjectStore(c.cfg)); err != nil {
		return nil, err
	}
	accessKey, secretKey, err := c.cfg.ObjectStore.Credentials(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	store, err := remote.NewS3Store(remote.S3Config{
		Endpoint:  c.cfg.ObjectStore.Endpoint,
		Bucket:    c.cfg.ObjectStore.Bucket,
		Region:    c.cfg.ObjectStore.Region,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Insecure:  c.cfg.ObjectStore.Insecure,
	})
	if err != nil {
		return nil, err
	}
	c.objects = store
	return c.objects, nil
}

func defaultOracle(cfg *config.Config) Oracle {
	if !cfg.Oracle.Enabled() {
		return version.NoOracle{}
	}
	binary := cfg.Oracle.Binary
	if binary == "" {
		binary = version.DefaultOracleBinary
	}
	if !runner.Available(binary) {
		return version.NoOracle{}
	}
	return version.XbpsOracle{Runner: runner.ExecRunner{}, Binary: binary}
}
