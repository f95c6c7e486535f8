package seedstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// Backend key names of the primary wallet secrets. They match the names
// earlier wallet releases wrote, so existing keychains stay readable.
const (
	keyList     = "zECCWalletKeys"
	keySeed     = "zEECWalletSeedKey"
	keyBirthday = "zECCWalletBirthday"
	keyPhrase   = "zECCWalletPhrase"
)

const identityPrefix = "identity/"

// identityKeys holds the three backend keys of one identity record.
type identityKeys struct {
	namespace string
	height    string
	phrase    string
	spending  string
}

// all returns the field keys in write order.
func (k identityKeys) all() []string {
	return []string{k.height, k.phrase, k.spending}
}

// keysForIdentity namespaces an identity by the SHA-256 of its name, so two
// distinct names can never produce overlapping keys whatever characters they
// contain.
func keysForIdentity(id string) identityKeys {
	sum := sha256.Sum256([]byte(id))
	ns := identityPrefix + hex.EncodeToString(sum[:])
	return identityKeys{
		namespace: ns,
		height:    ns + "+height",
		phrase:    ns + "+phrase",
		spending:  ns + "+spending",
	}
}
