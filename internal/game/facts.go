package game

// FactsLookup is the seam to the client-local card metadata cache.
type FactsLookup interface {
	Lookup(cardID string) (CardFacts, bool)
}

// ResolveCardFacts resolves an object's static face through the layered
// fallback: inline override, then cached external lookup, then a zero
// placeholder. It never fails; missing metadata degrades, it does not
// block interaction.
func ResolveCardFacts(o GameObject, cache FactsLookup) CardFacts {
	if o.Facts != nil {
		return *o.Facts
	}
	if cache != nil && o.CardID != "" {
		if f, ok := cache.Lookup(o.CardID); ok {
			return f
		}
	}
	return CardFacts{}
}

// PowerDelta is the combined power modification from counters: P1P1
// contributes to both axes, POWER only to this one. Deltas are signed.
func PowerDelta(o GameObject) int {
	return o.Counters[CounterP1P1] + o.Counters[CounterPower]
}

// ToughnessDelta mirrors PowerDelta for the toughness axis.
func ToughnessDelta(o GameObject) int {
	return o.Counters[CounterP1P1] + o.Counters[CounterToughness]
}
