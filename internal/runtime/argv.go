package runtime

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/scripthost/scripthost/engine"
	loggingpkg "github.com/scripthost/scripthost/internal/runtime/logging"
)

// Argv converts already-decoded strings into the raw byte-vector form that
// InitOptions.Args takes.
func Argv(args ...string) [][]byte {
	raw := make([][]byte, len(args))
	for i, arg := range args {
		raw[i] = []byte(arg)
	}
	return raw
}

// syntheticArgv is installed when no arguments are supplied. Historical
// runtimes crash on a genuinely empty argument vector, so a single empty
// string stands in.
func syntheticArgv() [][]byte {
	return [][]byte{{}}
}

// localeCharset derives the argument charset from the usual locale
// environment variables, falling back to UTF-8.
func localeCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		// Locale strings look like "en_US.UTF-8@variant".
		if dot := strings.IndexByte(value, '.'); dot >= 0 {
			charset := value[dot+1:]
			if at := strings.IndexByte(charset, '@'); at >= 0 {
				charset = charset[:at]
			}
			if charset != "" {
				return charset
			}
		}
		break
	}
	return "UTF-8"
}

// decodeArgv decodes each raw argument into the engine's native UTF-8 string
// form using the named IANA charset. The second return is false when the
// charset is unknown or any element fails to decode cleanly; in that case the
// whole vector is discarded.
func decodeArgv(raw [][]byte, charset string) ([]string, bool) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, false
	}
	decoder := enc.NewDecoder()

	args := make([]string, 0, len(raw))
	for _, b := range raw {
		decoded, err := decoder.String(string(b))
		if err != nil {
			return nil, false
		}
		if !utf8.ValidString(decoded) {
			return nil, false
		}
		// Some decoders substitute U+FFFD instead of reporting bad input.
		if strings.ContainsRune(decoded, utf8.RuneError) && !strings.ContainsRune(string(b), utf8.RuneError) {
			return nil, false
		}
		args = append(args, decoded)
	}
	return args, true
}

// installArgv applies the argument vector and search-path flag to the engine.
// This is a best-effort helper: decode failures and installer errors leave
// the engine's argument state unset and are never surfaced to the caller.
func (h *Host) installArgv(ctx context.Context, raw [][]byte, addCwdToPath bool) {
	if len(raw) == 0 {
		raw = syntheticArgv()
	}

	charset := h.Conf.ArgvEncoding
	if charset == "" {
		charset = localeCharset()
	}

	args, ok := decodeArgv(raw, charset)
	if !ok {
		h.Logger.Debug("Skipping argument installation, arguments did not decode", loggingpkg.LogFields{
			"engine":  h.engine.Name(),
			"charset": charset,
		})
		h.metrics.RecordArgvSkipped(h.engine.Name())
		return
	}

	if installer, ok := h.engine.(engine.ArgvInstaller); ok {
		if err := installer.InstallArgv(ctx, args, addCwdToPath); err != nil {
			h.Logger.Debug("Argument installation failed", loggingpkg.LogFields{
				"engine": h.engine.Name(),
				"error":  err,
			})
		}
		return
	}

	legacy, ok := h.engine.(engine.LegacyArgvInstaller)
	if !ok {
		h.Logger.Debug("Engine does not support argument installation", loggingpkg.LogFields{
			"engine": h.engine.Name(),
		})
		return
	}
	if err := legacy.SetArgv(ctx, args); err != nil {
		h.Logger.Debug("Argument installation failed", loggingpkg.LogFields{
			"engine": h.engine.Name(),
			"error":  err,
		})
		return
	}
	// The split form always prepends the cwd entry to the search path, so
	// take it back off when the caller did not ask for it.
	if !addCwdToPath && !h.Conf.DisableArgvPathCompat {
		if editor, ok := h.engine.(engine.SearchPathEditor); ok {
			if err := editor.RemoveFirstSearchPath(ctx); err != nil {
				h.Logger.Debug("Search path compensation failed", loggingpkg.LogFields{
					"engine": h.engine.Name(),
					"error":  err,
				})
			}
		}
	}
}
