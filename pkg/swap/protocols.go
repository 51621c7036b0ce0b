package swap

// DefaultNormalizers returns the normalizer table for every supported
// protocol. The entries differ only in program id, filter width and event
// field mappings; the extraction machinery is shared.
func DefaultNormalizers() []Normalizer {
	swapPair := []eventRule{{
		Name:         "SwapEvent",
		MintInField:  "mint_in",
		MintOutField: "mint_out",
		InField:      "amount_in",
		OutField:     "amount_out",
		UserField:    "user",
	}}

	return []Normalizer{
		{
			Platform:  PlatformRaydiumAmm,
			ProgramID: ProgramID(PlatformRaydiumAmm),
			Rules:     swapPair,
		},
		{
			Platform:            PlatformRaydiumCpmm,
			ProgramID:           ProgramID(PlatformRaydiumCpmm),
			IncludeTokenProgram: true,
			Rules:               swapPair,
		},
		{
			Platform:            PlatformRaydiumClmm,
			ProgramID:           ProgramID(PlatformRaydiumClmm),
			IncludeTokenProgram: true,
			Rules:               swapPair,
		},
		{
			Platform:  PlatformRaydiumLaunchPad,
			ProgramID: ProgramID(PlatformRaydiumLaunchPad),
			Rules: []eventRule{{
				Name:       "TradeEvent",
				BoolField:  "is_buy",
				MintField:  "mint",
				QuoteField: "quote_amount",
				TokenField: "token_amount",
				UserField:  "user",
			}},
		},
		{
			Platform:            PlatformOrca,
			ProgramID:           ProgramID(PlatformOrca),
			IncludeTokenProgram: true,
			Rules: []eventRule{{
				Name:         "Traded",
				MintInField:  "mint_in",
				MintOutField: "mint_out",
				InField:      "amount_in",
				OutField:     "amount_out",
				UserField:    "user",
			}},
		},
		{
			Platform:  PlatformMeteoraDLMM,
			ProgramID: ProgramID(PlatformMeteoraDLMM),
			Rules: []eventRule{{
				Name:         "Swap",
				MintInField:  "mint_in",
				MintOutField: "mint_out",
				InField:      "amount_in",
				OutField:     "amount_out",
				UserField:    "user",
			}},
		},
		{
			Platform:            PlatformMeteoraDammV2,
			ProgramID:           ProgramID(PlatformMeteoraDammV2),
			IncludeTokenProgram: true,
			Rules: []eventRule{{
				Name:         "EvtSwap",
				MintInField:  "mint_in",
				MintOutField: "mint_out",
				InField:      "amount_in",
				OutField:     "amount_out",
				UserField:    "user",
			}},
		},
		{
			Platform:            PlatformMeteoraDBC,
			ProgramID:           ProgramID(PlatformMeteoraDBC),
			IncludeTokenProgram: true,
			Rules: []eventRule{{
				Name:         "EvtSwap",
				MintInField:  "mint_in",
				MintOutField: "mint_out",
				InField:      "amount_in",
				OutField:     "amount_out",
				UserField:    "user",
			}},
		},
		{
			Platform:  PlatformPumpFun,
			ProgramID: ProgramID(PlatformPumpFun),
			Rules: []eventRule{{
				Name:       "TradeEvent",
				BoolField:  "is_buy",
				MintField:  "mint",
				QuoteField: "sol_amount",
				TokenField: "token_amount",
				UserField:  "user",
			}},
		},
		{
			Platform:  PlatformPumpFunAmm,
			ProgramID: ProgramID(PlatformPumpFunAmm),
			Rules: []eventRule{
				{
					Name:       "BuyEvent",
					Direction:  TxTypeBuy,
					MintField:  "base_mint",
					QuoteField: "quote_amount_in",
					TokenField: "base_amount_out",
					UserField:  "user",
				},
				{
					Name:       "SellEvent",
					Direction:  TxTypeSell,
					MintField:  "base_mint",
					QuoteField: "quote_amount_out",
					TokenField: "base_amount_in",
					UserField:  "user",
				},
			},
		},
	}
}
