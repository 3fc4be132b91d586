// Package cryptoagent provides crypto agents for encrypted ID3v2.3 frames.
//
// An ID3v2.3 ENCR frame names an owner and carries method data. A tag
// resolves the owner to an agent through a Directory and passes the
// method data to the agent as auxiliary data:
//
//	dir := cryptoagent.NewDirectory()
//	dir.Register("mailto:keys@example.com", cryptoagent.NewSecretbox(key))
//
//	tag, err := id3v23.Read(data, id3v23.WithAgents(dir))
//
// Both agents prepend a random nonce to the ciphertext and authenticate
// the auxiliary data, so a frame only decrypts under the ENCR frame it
// was written with.
package cryptoagent
