package metrics

import "github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"

const namespace = "crosschain_escrow"

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// reasonOf keeps label cardinality bounded: protocol rejections carry their
// reason, anything else is "internal".
func reasonOf(err error) string {
	if err == nil {
		return "none"
	}
	return model.ReasonOf(err)
}
