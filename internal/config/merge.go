package config

import "fmt"

// Merge combines two configs where overlay takes precedence over base.
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - scalars: a non-empty overlay value replaces the base value
//   - oracle.disabled: the highest layer that sets it wins, either way
//   - object_store.insecure: true in any layer wins
//   - object_store: merged field by field with the same rules
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := &Config{}

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	result.Repository = pick(base.Repository, overlay.Repository)
	result.Category = pick(base.Category, overlay.Category)
	result.Arch = pick(base.Arch, overlay.Arch)
	result.DistDir = pick(base.DistDir, overlay.DistDir)
	result.Timeout = base.Timeout
	if overlay.Timeout != 0 {
		result.Timeout = overlay.Timeout
	}

	result.Oracle = OracleConfig{
		Disabled: base.Oracle.Disabled,
		Binary:   pick(base.Oracle.Binary, overlay.Oracle.Binary),
	}
	if overlay.Oracle.Disabled != nil {
		result.Oracle.Disabled = overlay.Oracle.Disabled
	}

	b, o := base.ObjectStore, overlay.ObjectStore
	result.ObjectStore = ObjectStoreConfig{
		Bucket:       pick(b.Bucket, o.Bucket),
		Endpoint:     pick(b.Endpoint, o.Endpoint),
		Region:       pick(b.Region, o.Region),
		Insecure:     b.Insecure || o.Insecure,
		AccessKeyEnv: pick(b.AccessKeyEnv, o.AccessKeyEnv),
		SecretKeyEnv: pick(b.SecretKeyEnv, o.SecretKeyEnv),
	}

	return result, nil
}

// MergeAll merges multiple configs in order (lowest precedence first).
// Returns an error if any version mismatch is found.
func MergeAll(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		var err error
		result, err = Merge(result, configs[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; defaults fill it in
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: one layer declares version %d, another declares version %d — all config layers must agree on version", base, overlay)
	}
	return nil
}

func pick(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}
