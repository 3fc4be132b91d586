// Package id3v23 reads and writes ID3v2.3.0 tags.
//
// A tag is parsed from an in-memory buffer into typed frames and
// serialized back into ID3v2.3.0 compliant bytes. The package handles the
// envelope around each frame: header flags, zlib compression, encryption
// through pluggable crypto agents, grouping, unsynchronization, the
// extended header CRC and padding.
//
// # Quick Start
//
// Reading a tag:
//
//	data, err := os.ReadFile("song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	start, n, ok := id3v23.Locate(data)
//	if !ok {
//		log.Fatal("no ID3v2 tag")
//	}
//	tag, err := id3v23.Read(data[start : start+n])
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s - %s\n", tag.Text("TPE1"), tag.Text("TIT2"))
//
// Building a tag:
//
//	tag := id3v23.New()
//	tag.SetText("TIT2", "Song")
//	tag.Add(id3v23.NewCommentFrame("eng", "", "recorded live"))
//	b, err := tag.Bytes()
//
// # Frames
//
// Every frame type embeds FrameHeader. Text (T***) and URL (W***) frames
// are single-valued per id. Keyed types such as COMM, TXXX, PRIV and ENCR
// may occur several times per id, indexed by a uniqueness key:
//
//	COMM, USLT   language + description
//	TXXX, WXXX   description
//	UFID, ENCR   owner
//	PRIV         owner + BLAKE2b-256 of the data
//	GRID         group symbol
//	POPM         email
//	APIC, GEOB   description
//
// Key setters such as (*CommentFrame).SetDescription check the index of
// the tag the frame is stored in and leave the frame unchanged on a
// collision.
//
// Frames whose id has no decoder are kept as *UnknownFrame. Frames that
// cannot be decrypted are kept byte for byte as *EncryptedFrame.
//
// # Encryption
//
// An encrypted frame names a method symbol registered by an ENCR frame;
// the ENCR owner selects a CryptoAgent from the AgentDirectory passed with
// WithAgents. The cryptoagent package provides a directory and two
// agents. Encrypted frames that appear before their ENCR frame are
// resolved after the whole tag has been read.
//
// # Error Handling
//
// Structural problems (bad header, CRC mismatch) return *StructuralError.
// A frame that cannot be decoded returns *FrameDecodeError. In lenient
// mode, the default, a frame with an invalid id is skipped and recorded
// in Tag.Warnings instead:
//
//	if len(tag.Warnings) > 0 {
//		for _, w := range tag.Warnings {
//			log.Printf("Warning: %s", w)
//		}
//	}
//
// Mutations that would break a uniqueness key return *ConstraintError.
//
// # Concurrency
//
// A Tag is not safe for concurrent use. ReadMany parses independent
// buffers in parallel.
package id3v23
