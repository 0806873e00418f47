package allocation

import "github.com/The-Last-Byte-Bar/Token-Flight/internal/models"

// Assemble packages per-token distributions into the payload handed off to
// the transaction builder. Within each token, duplicate addresses are merged
// into a single recipient entry; this happens when the pool fee address also
// mined during the period. No allocation arithmetic occurs here, so merging
// preserves each distribution's total.
func Assemble(distributions ...models.Distribution) models.Payload {
	payload := models.Payload{Distributions: make([]models.Distribution, 0, len(distributions))}
	for _, d := range distributions {
		payload.Distributions = append(payload.Distributions, mergeDuplicates(d))
	}
	return payload
}

func mergeDuplicates(d models.Distribution) models.Distribution {
	merged := models.Distribution{TokenName: d.TokenName}
	index := make(map[string]int, len(d.Recipients))

	for _, r := range d.Recipients {
		if i, ok := index[r.Address]; ok {
			merged.Recipients[i].Amount = merged.Recipients[i].Amount.Add(r.Amount)
			continue
		}
		index[r.Address] = len(merged.Recipients)
		merged.Recipients = append(merged.Recipients, r)
	}
	return merged
}
