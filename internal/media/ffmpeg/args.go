package ffmpeg

import "strings"

func buildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func buildRemuxArgs(videoPath, audioPath, outputPath, videoCodec, audioCodec string) []string {
	if strings.TrimSpace(videoCodec) == "" {
		videoCodec = "copy"
	}
	if strings.TrimSpace(audioCodec) == "" {
		audioCodec = "aac"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-dn",
		"-c:v", videoCodec,
		"-c:a", audioCodec,
		"-map_metadata", "0",
		"-map_chapters", "0",
	}
	if strings.HasSuffix(strings.ToLower(outputPath), ".mp4") || strings.HasSuffix(strings.ToLower(outputPath), ".mov") {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, outputPath)
}
