package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/simonhull/id3v23"
)

// Useful tool to confirm what we're able to actually read from a tag.
func main() {
	configPath := flag.String("config", "", "TOML file with strict mode and crypto agents")
	strict := flag.Bool("strict", false, "abort on ID3v2.3 deviations")
	verbose := flag.Bool("v", false, "debug logging")
	rewrite := flag.String("rewrite", "", "write the file with the re-serialized tag to this path")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: id3-dump [-config agents.toml] [-strict] [-v] [-rewrite out.mp3] <file.mp3>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		vi := id3v23.GetVersionInfo()
		fmt.Printf("id3-dump %s (commit %s, built %s, %s)\n", vi.Version, vi.GitCommit, vi.BuildTime, vi.GoVersion)
		return
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := defaultDumpConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			log.WithError(err).Fatal("config")
		}
	}
	if *strict {
		cfg.Strict = true
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.WithError(err).Fatal("read file")
	}

	opts := []id3v23.Option{
		id3v23.WithAgents(cfg.Agents),
		id3v23.WithLogger(log),
	}
	if cfg.Strict {
		opts = append(opts, id3v23.WithStrict())
	}

	tag, err := dump(os.Stdout, data, opts...)
	if err != nil {
		log.WithError(err).Fatal("parse tag")
	}

	if *rewrite != "" {
		if err := id3v23.SaveFileAs(flag.Arg(0), *rewrite, tag, id3v23.WithValidation()); err != nil {
			log.WithError(err).Fatal("rewrite")
		}
		log.WithField("path", *rewrite).Info("tag rewritten")
	}
}

func dump(w io.Writer, data []byte, opts ...id3v23.Option) (*id3v23.Tag, error) {
	start, n, ok := id3v23.Locate(data)
	if !ok {
		return nil, fmt.Errorf("no ID3v2 tag found")
	}
	tag, err := id3v23.Read(data[start:start+n], opts...)
	if err != nil {
		return nil, err
	}

	h := tag.Header()
	fmt.Fprintf(w, "ID3v2.%d.%d (size: %d, unsync: %t, experimental: %t)\n",
		h.Version, h.Revision, h.Size, h.Unsynchronization, h.Experimental)
	if eh, ok := tag.ExtendedHeader(); ok {
		fmt.Fprintf(w, "extended header (padding: %d, crc: %t %08x)\n", eh.PaddingSize, eh.CRCPresent, eh.CRC)
	}

	for f := range tag.All() {
		fmt.Fprintf(w, "  %s%s: %s\n", f.ID(), flagString(f.Flags()), describe(f))
	}
	fmt.Fprintf(w, "padding: %d\n", tag.Padding())

	for _, warn := range tag.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return tag, nil
}

func flagString(fl id3v23.FrameFlags) string {
	s := ""
	if fl.Compression {
		s += " [zlib]"
	}
	if fl.Encryption {
		s += " [enc]"
	}
	if fl.GroupingIdentity {
		s += " [grp]"
	}
	if fl.ReadOnly {
		s += " [ro]"
	}
	return s
}

func describe(f id3v23.Frame) string {
	switch fr := f.(type) {
	case *id3v23.TextFrame:
		return fmt.Sprintf("%q", fr.Text)
	case *id3v23.UserTextFrame:
		return fmt.Sprintf("%q = %q", fr.Description(), fr.Value)
	case *id3v23.URLFrame:
		return fr.URL()
	case *id3v23.UserURLFrame:
		return fmt.Sprintf("%q = %s", fr.Description(), fr.URL)
	case *id3v23.CommentFrame:
		return fmt.Sprintf("[%s] %q: %q", fr.Language(), fr.Description(), fr.Text)
	case *id3v23.PictureFrame:
		return fmt.Sprintf("%s type %d %q (%d bytes)", fr.MIMEType, fr.PictureType, fr.Description(), len(fr.Data))
	case *id3v23.EncryptionMethodFrame:
		return fmt.Sprintf("owner %q symbol 0x%02x", fr.Owner(), fr.Symbol())
	case *id3v23.PrivateFrame:
		return fmt.Sprintf("owner %q (%d bytes)", fr.Owner(), len(fr.Data()))
	case *id3v23.PlayCounterFrame:
		return fmt.Sprintf("%d plays", fr.Counter)
	case *id3v23.PopularimeterFrame:
		return fmt.Sprintf("%s rating %d, %d plays", fr.Email(), fr.Rating, fr.Counter)
	case *id3v23.EncryptedFrame:
		return fmt.Sprintf("encrypted with symbol 0x%02x (%d bytes)", fr.Symbol(), len(fr.Payload))
	case *id3v23.UnknownFrame:
		return fmt.Sprintf("unknown (%d bytes)", len(fr.Data))
	default:
		return fmt.Sprintf("%T", f)
	}
}
