package id3v23

// CryptoAgent encrypts and decrypts frame payloads for one ENCR owner.
//
// The auxiliary data is the encryption data carried by the ENCR frame
// that registered the method symbol.
type CryptoAgent interface {
	Encrypt(data, aux []byte) ([]byte, error)
	Decrypt(data, aux []byte) ([]byte, error)
}

// AgentDirectory resolves ENCR owner identifiers to crypto agents.
type AgentDirectory interface {
	Lookup(owner string) (CryptoAgent, bool)
}

// CryptoBinding is the resolved encryption context of one frame.
// It is recomputed on demand from the tag's ENCR frames and never stored.
type CryptoBinding struct {
	Symbol byte
	Owner  string
	Agent  CryptoAgent
	Data   []byte
}

// resolveBinding finds the ENCR frame registering symbol and the agent for
// its owner. It returns an UnresolvableEncryptionError when either is missing.
func resolveBinding(id string, symbol byte, methods []*EncryptionMethodFrame, agents AgentDirectory) (CryptoBinding, error) {
	for _, m := range methods {
		if m.Symbol() != symbol {
			continue
		}
		if agents != nil {
			if agent, ok := agents.Lookup(m.Owner()); ok {
				return CryptoBinding{
					Symbol: symbol,
					Owner:  m.Owner(),
					Agent:  agent,
					Data:   m.Data,
				}, nil
			}
		}
		return CryptoBinding{}, &UnresolvableEncryptionError{FrameID: id, Symbol: symbol, Owner: m.Owner()}
	}
	return CryptoBinding{}, &UnresolvableEncryptionError{FrameID: id, Symbol: symbol}
}
