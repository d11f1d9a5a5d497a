package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	coreerrors "github.com/eransh/subtle/pkg/core/errors"
	"github.com/eransh/subtle/pkg/core/fileops"
	"github.com/eransh/subtle/pkg/core/metadata"
	"github.com/eransh/subtle/pkg/core/opensubtitles"
	"github.com/eransh/subtle/pkg/core/search"
)

// SubtitleClient is the slice of the XML-RPC client the processor needs.
type SubtitleClient interface {
	SearchSubtitles(queries []opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error)
	DownloadSubtitles(ids []string) ([]opensubtitles.DownloadedSubtitle, error)
}

// LinkFetcher downloads a raw (gzip) body from a direct subtitle link. Used
// as a fallback when the XML-RPC download method returns nothing for an ID.
type LinkFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options carries the user-settings slice that drives a find-and-download
// run.
type Options struct {
	Methods     search.Method
	Languages   []string // ordered by preference
	DownloadDir string   // "" means next to the video file
	Overwrite   bool
}

// Result summarizes one completed find-and-download run.
type Result struct {
	VideoPath    string
	SubtitlePath string
	Language     string // sublanguageid of the chosen subtitle
	SubFileName  string // remote subtitle filename
	MatchedBy    string
	Candidates   int // how many results the search returned
}

// Processor drives the whole flow for one video: extract metadata, build
// the query batch, search, rank, pick, download, decompress, write.
type Processor struct {
	client  SubtitleClient
	fetcher LinkFetcher
	opts    Options
}

// New creates a Processor. fetcher may be nil, which disables the
// direct-link fallback.
func New(client SubtitleClient, fetcher LinkFetcher, opts Options) *Processor {
	if opts.Methods == 0 {
		opts.Methods = search.MethodAll
	}
	return &Processor{client: client, fetcher: fetcher, opts: opts}
}

// Search runs metadata extraction and the search for a video and returns
// the ranked results. imdbID (optional, with or without "tt" prefix)
// overrides the NFO-derived ID.
func (p *Processor) Search(ctx context.Context, videoPath, imdbID string) (*metadata.VideoInfo, []opensubtitles.SubtitleResult, error) {
	info, err := metadata.Extract(videoPath)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	queries := search.BuildQueries(info, p.opts.Methods, p.opts.Languages, imdbID)
	if len(queries) == 0 {
		return info, nil, fmt.Errorf("no usable search query for %s (enabled methods: %v)",
			info.FileName, p.opts.Methods.Names())
	}

	log.WithFields(log.Fields{
		"video":   info.FileName,
		"queries": len(queries),
	}).Info("Searching for subtitles")

	results, err := p.client.SearchSubtitles(queries)
	if err != nil {
		return info, nil, fmt.Errorf("subtitle search failed: %w", err)
	}

	return info, search.Rank(results, p.opts.Languages), nil
}

// Process runs the full flow for one video and writes the best matching
// subtitle to disk. Returns ErrNoResults when the search comes back empty.
func (p *Processor) Process(ctx context.Context, videoPath, imdbID string) (*Result, error) {
	info, ranked, err := p.Search(ctx, videoPath, imdbID)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%s: %w", info.FileName, coreerrors.ErrNoResults)
	}

	best := ranked[0]
	log.WithFields(log.Fields{
		"video":     info.FileName,
		"subtitle":  best.SubFileName,
		"language":  best.SubLanguageID,
		"matchedBy": best.MatchedBy,
		"downloads": best.SubDownloadsCnt,
	}).Info("Selected subtitle")

	path, err := p.Download(ctx, videoPath, &best)
	if err != nil {
		return nil, err
	}

	return &Result{
		VideoPath:    videoPath,
		SubtitlePath: path,
		Language:     best.SubLanguageID,
		SubFileName:  best.SubFileName,
		MatchedBy:    best.MatchedBy,
		Candidates:   len(ranked),
	}, nil
}

// Download fetches one chosen search result, decompresses it and writes it
// next to the video (or into the configured download directory). Returns
// the written path.
func (p *Processor) Download(ctx context.Context, videoPath string, sub *opensubtitles.SubtitleResult) (string, error) {
	content, err := p.fetchContent(ctx, sub)
	if err != nil {
		return "", err
	}

	destPath := p.destinationPath(videoPath, sub)
	if err := fileops.WriteSubtitle(destPath, content, p.opts.Overwrite); err != nil {
		return "", err
	}

	fields := log.Fields{
		"path":  destPath,
		"bytes": len(content),
	}
	if sum, err := fileops.CalculateMD5Hash(destPath); err == nil {
		fields["md5"] = sum
	}
	log.WithFields(fields).Info("Subtitle written")
	return destPath, nil
}

// fetchContent tries the XML-RPC download method first and falls back to
// the direct download link. A download-quota error is final: the direct
// links count against the same quota, so falling back would just fail too.
func (p *Processor) fetchContent(ctx context.Context, sub *opensubtitles.SubtitleResult) ([]byte, error) {
	var rpcErr error
	if sub.IDSubtitleFile != "" {
		downloads, err := p.client.DownloadSubtitles([]string{sub.IDSubtitleFile})
		if err == nil && len(downloads) > 0 && len(downloads[0].Content) > 0 {
			return downloads[0].Content, nil
		}
		if err != nil {
			if errors.Is(err, coreerrors.ErrDownloadLimitReached) {
				return nil, err
			}
			log.Warnf("XML-RPC download of subtitle %s failed: %v", sub.IDSubtitleFile, err)
			rpcErr = err
		}
	}

	if p.fetcher == nil || sub.SubDownloadLink == "" {
		if rpcErr != nil {
			return nil, fmt.Errorf("could not download subtitle file %s: %w", sub.IDSubtitleFile, rpcErr)
		}
		return nil, fmt.Errorf("could not download subtitle file %s", sub.IDSubtitleFile)
	}

	log.Debugf("Falling back to direct download link for subtitle %s", sub.IDSubtitleFile)
	compressed, err := p.fetcher.Fetch(ctx, sub.SubDownloadLink)
	if err != nil {
		return nil, fmt.Errorf("direct subtitle download failed: %w", err)
	}
	return fileops.DecompressGzip(compressed)
}

// destinationPath picks where the subtitle lands. With a download directory
// configured, the file keeps the video's derived name but moves there.
func (p *Processor) destinationPath(videoPath string, sub *opensubtitles.SubtitleResult) string {
	lang := sub.ISO639
	if lang == "" {
		lang = sub.SubLanguageID
	}
	destPath := fileops.SubtitlePathFor(videoPath, lang, sub.SubFormat)
	if p.opts.DownloadDir != "" {
		destPath = filepath.Join(p.opts.DownloadDir, filepath.Base(destPath))
	}
	return destPath
}
