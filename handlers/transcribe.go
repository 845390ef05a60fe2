package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"voicedesk/config"
	"voicedesk/services/conversation"
	"voicedesk/utils"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

const (
	maxAudioBytes    = 5 * 1024 * 1024 // 5MB
	allowedExtension = ".wav"
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}

	var header waveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	if header.AudioFormat != 1 {
		return nil, errors.New("only PCM encoding is supported")
	}
	if header.NumChannels != 1 {
		return nil, errors.New("only mono audio is supported")
	}
	if header.BitsPerSample != 16 {
		return nil, errors.New("only 16-bit samples are supported")
	}
	return &header, nil
}

// TranscribeHandler accepts a WAV upload, transcribes it with Google Speech,
// and runs the transcript through the conversation state machine so voice
// clients get the same flow as text clients.
type TranscribeHandler struct {
	Conversation conversation.ConversationService
}

func NewTranscribeHandler(svc conversation.ConversationService) *TranscribeHandler {
	return &TranscribeHandler{Conversation: svc}
}

func (h *TranscribeHandler) TranscribeMessageHandler(c *gin.Context) {
	if !config.AppConfig.GoogleSpeechEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech recognition is not enabled"})
		return
	}

	language := c.DefaultPostForm("language", "en-US")
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required", "details": err.Error()})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != allowedExtension {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid file type",
			"details": fmt.Sprintf("expected %s, got %s", allowedExtension, ext),
		})
		return
	}

	audioData, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audio file", "details": err.Error()})
		return
	}

	wav, err := parseWaveHeader(audioData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported audio format", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	client, err := speech.NewClient(ctx)
	if err != nil {
		utils.GetLogger().Error("failed to initialize speech client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "speech recognition unavailable"})
		return
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   int32(wav.SampleRate),
			LanguageCode:      language,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		utils.GetLogger().Error("speech recognition failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "speech recognition failed"})
		return
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}
	text := strings.TrimSpace(transcript.String())
	if text == "" {
		c.JSON(http.StatusOK, gin.H{
			"session_id":    sessionID,
			"transcription": "",
			"response":      "I'm sorry, I couldn't hear that. Could you say it again?",
		})
		return
	}

	reply, err := h.Conversation.ProcessMessage(ctx, sessionID, text)
	if err != nil {
		utils.GetLogger().Error("conversation turn failed",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":    sessionID,
		"transcription": text,
		"response":      reply.Response,
		"state":         reply.Context.State,
		"intent":        reply.Context.Intent,
	})
}
