package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegProcessor implements VideoProcessor with a local ffmpeg binary.
type FFmpegProcessor struct{}

type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads a video file's duration and frame size via ffprobe.
func (FFmpegProcessor) Probe(path string) (float64, int, int, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}

	var result probeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return 0, 0, 0, err
	}

	duration, _ := strconv.ParseFloat(result.Format.Duration, 64)

	var width, height int
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			width = stream.Width
			height = stream.Height
			break
		}
	}
	return duration, width, height, nil
}

// ExtractFrame writes the frame at one second in as a JPEG poster.
func (FFmpegProcessor) ExtractFrame(videoPath, framePath string) error {
	return ffmpeg.Input(videoPath).
		Output(framePath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Silent(true).
		Run()
}
