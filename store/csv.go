package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cinekit/cinekit/core"
)

// CSV 布局（离线采集任务的导出格式）：
//
//	movies.csv:  movie_id,title,synopsis,genres,duration,director,cast,year
//	ratings.csv: user_id,movie_id,rating,timestamp
//
// genres / cast 用 '|' 分隔。首行是表头，加载时跳过。
// 逐行容错：字段数不足或 id 非法的行跳过，不中断整个文件。

// LoadCatalogCSV 从 CSV 文件加载电影目录。
func LoadCatalogCSV(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open catalog csv: %w", err)
	}
	defer f.Close()

	movies, err := readCatalogCSV(f)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(movies), nil
}

func readCatalogCSV(r io.Reader) ([]core.Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var movies []core.Movie
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: read catalog csv: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < 5 {
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			continue
		}
		duration, _ := strconv.Atoi(strings.TrimSpace(row[4]))

		m := core.Movie{
			ID:       id,
			Title:    row[1],
			Synopsis: row[2],
			Genres:   splitMulti(row[3]),
			Duration: duration,
		}
		if len(row) > 5 {
			m.Director = row[5]
		}
		if len(row) > 6 {
			m.Cast = splitMulti(row[6])
		}
		if len(row) > 7 {
			m.Year, _ = strconv.Atoi(strings.TrimSpace(row[7]))
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// LoadRatingsCSV 从 CSV 文件加载评分记录，保持文件内的行序（append-only 日志序）。
func LoadRatingsCSV(path string) ([]core.Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open ratings csv: %w", err)
	}
	defer f.Close()
	return readRatingsCSV(f)
}

func readRatingsCSV(r io.Reader) ([]core.Rating, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var ratings []core.Rating
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: read ratings csv: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < 3 {
			continue
		}

		userID, err1 := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		movieID, err2 := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		value, err3 := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		rec := core.Rating{UserID: userID, MovieID: movieID, Value: value}
		if len(row) > 3 {
			rec.Timestamp, _ = strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
		}
		ratings = append(ratings, rec)
	}
	return ratings, nil
}

// NewMemoryRatingStoreFromCSV 加载评分 CSV 并灌入内存存储。
// 分值非法的历史行直接跳过（存量数据里存在脏行）。
func NewMemoryRatingStoreFromCSV(path string) (*MemoryRatingStore, error) {
	ratings, err := LoadRatingsCSV(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryRatingStore()
	for _, rec := range ratings {
		if rec.Value < 0.5 || rec.Value > 5.0 {
			continue
		}
		s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec)
	}
	return s, nil
}

func splitMulti(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
