package swap

// registryEntry binds a platform to the program id that identifies it.
type registryEntry struct {
	Platform  Platform
	ProgramID string
}

// platformRegistry is ordered: classification returns the first entry whose
// program id appears in the account-key set, so a transaction touching more
// than one protocol is attributed to the earliest-registered one.
var platformRegistry = []registryEntry{
	{PlatformRaydiumAmm, "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"},
	{PlatformRaydiumCpmm, "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"},
	{PlatformRaydiumClmm, "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"},
	{PlatformRaydiumLaunchPad, "LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj"},
	{PlatformOrca, "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"},
	{PlatformMeteoraDLMM, "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"},
	{PlatformMeteoraDammV2, "cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG"},
	{PlatformMeteoraDBC, "dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN"},
	{PlatformPumpFun, "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"},
	{PlatformPumpFunAmm, "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"},
}

// Classify identifies which protocol produced a transaction from its
// account-key set. The second return is false when no registered program id
// is present; callers treat that as "filtered out", not an error.
func Classify(accountKeys []string) (Platform, bool) {
	keySet := make(map[string]struct{}, len(accountKeys))
	for _, key := range accountKeys {
		keySet[key] = struct{}{}
	}

	for _, entry := range platformRegistry {
		if _, ok := keySet[entry.ProgramID]; ok {
			return entry.Platform, true
		}
	}
	return "", false
}

// ProgramID returns the program id registered for a platform.
func ProgramID(platform Platform) string {
	for _, entry := range platformRegistry {
		if entry.Platform == platform {
			return entry.ProgramID
		}
	}
	return ""
}

// Platforms returns all registered platforms in classification order.
func Platforms() []Platform {
	out := make([]Platform, 0, len(platformRegistry))
	for _, entry := range platformRegistry {
		out = append(out, entry.Platform)
	}
	return out
}
