// Package env overlays process environment variables, optionally read from
// .env files, onto application settings.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads each file into the process environment. Missing files are
// skipped and variables already set win over file contents.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Apply overlays the process environment onto s.
func Apply(s *domain.AppSettings) error {
	return ApplyFrom(s, os.LookupEnv)
}

// ApplyFrom overlays variables from lookup onto s. Unset or empty variables
// leave the current value in place; malformed numbers are reported.
func ApplyFrom(s *domain.AppSettings, lookup LookupFunc) error {
	o := overlay{lookup: lookup}

	o.str(&s.Server.Addr, "DOCQA_ADDR")
	o.boolean(&s.Server.DevMode, "DOCQA_DEV_MODE")
	o.list(&s.Server.AllowedOrigins, "DOCQA_ALLOWED_ORIGINS")
	o.duration(&s.Server.RequestTimeout, "DOCQA_REQUEST_TIMEOUT")

	o.provider(&s.Embedding.Provider, "DOCQA_EMBEDDING_PROVIDER")
	o.str(&s.Embedding.Model, "EMBEDDING_MODEL", "DOCQA_EMBEDDING_MODEL")
	o.str(&s.Embedding.BaseURL, "DOCQA_EMBEDDING_BASE_URL")
	o.str(&s.Embedding.APIKey, "DOCQA_EMBEDDING_API_KEY")
	if v, ok := o.get("DOCQA_EMBEDDING_PREFIX"); ok {
		s.Embedding.Prefix = domain.PrefixConvention(v)
	}

	o.provider(&s.LLM.Provider, "DOCQA_LLM_PROVIDER")
	o.str(&s.LLM.Model, "LLM_MODEL", "DOCQA_LLM_MODEL")
	o.str(&s.LLM.BaseURL, "DOCQA_LLM_BASE_URL")
	o.str(&s.LLM.APIKey, "DOCQA_LLM_API_KEY")
	o.integer(&s.LLM.ContextWindow, "DOCQA_LLM_CONTEXT_WINDOW")

	if v, ok := o.get("DOCQA_RERANKER_PROVIDER"); ok {
		s.Reranker.Provider = domain.RerankerProvider(v)
	}
	o.str(&s.Reranker.BaseURL, "DOCQA_RERANKER_URL")
	o.str(&s.Reranker.Model, "DOCQA_RERANKER_MODEL")
	o.integer(&s.Reranker.Concurrency, "DOCQA_RERANKER_CONCURRENCY")

	if v, ok := o.get("DOCQA_VECTOR_STORE"); ok {
		s.VectorStore.Provider = domain.VectorStoreProvider(v)
	}
	o.str(&s.VectorStore.Path, "DOCQA_VECTOR_STORE_PATH")
	o.str(&s.VectorStore.Collection, "DOCQA_VECTOR_STORE_COLLECTION")
	o.str(&s.VectorStore.APIKey, "DOCQA_VECTOR_STORE_API_KEY")
	o.integer(&s.VectorStore.Dimensions, "DOCQA_VECTOR_STORE_DIMENSIONS")
	if host, ok := o.get("CHROMA_DB_HOST"); ok {
		port, ok := o.get("CHROMA_DB_PORT")
		if !ok {
			port = "6333"
		}
		s.VectorStore.URL = "http://" + host + ":" + port
	}
	o.str(&s.VectorStore.URL, "DOCQA_VECTOR_STORE_URL")

	o.integer(&s.Retrieval.ChunkSize, "DOCQA_CHUNK_SIZE")
	o.integer(&s.Retrieval.CandidateK, "DOCQA_CANDIDATE_K")
	o.integer(&s.Retrieval.ContextK, "DOCQA_CONTEXT_K")
	o.integer(&s.Retrieval.MaxInFlight, "DOCQA_MAX_IN_FLIGHT")

	o.str(&s.DataDir, "DOCQA_DATA_DIR")
	o.boolean(&s.Verbose, "DOCQA_VERBOSE")

	return errors.Join(o.errs...)
}

type overlay struct {
	lookup LookupFunc
	errs   []error
}

// get returns the first non-empty variable among keys, later keys winning.
func (o *overlay) get(keys ...string) (string, bool) {
	var val string
	var found bool
	for _, k := range keys {
		if v, ok := o.lookup(k); ok && strings.TrimSpace(v) != "" {
			val, found = strings.TrimSpace(v), true
		}
	}
	return val, found
}

func (o *overlay) str(dst *string, keys ...string) {
	if v, ok := o.get(keys...); ok {
		*dst = v
	}
}

func (o *overlay) list(dst *[]string, key string) {
	v, ok := o.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func (o *overlay) provider(dst *domain.AIProvider, key string) {
	v, ok := o.get(key)
	if !ok {
		return
	}
	p := domain.AIProvider(strings.ToLower(v))
	if !p.IsValid() {
		o.errs = append(o.errs, fmt.Errorf("%s: unknown provider %q", key, v))
		return
	}
	*dst = p
}

func (o *overlay) integer(dst *int, key string) {
	v, ok := o.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (o *overlay) boolean(dst *bool, key string) {
	v, ok := o.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (o *overlay) duration(dst *time.Duration, key string) {
	v, ok := o.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
