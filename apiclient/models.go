package apiclient

// Project is an AICP video production project
type Project struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      *string           `json:"description,omitempty"`
	Program          *Program          `json:"program,omitempty"`
	ProductionConfig *ProductionConfig `json:"production_config,omitempty"`
	Actors           []Actor           `json:"actors,omitempty"`
	Seed             int64             `json:"seed,omitempty"`
}

// ProjectCreate is the create-project request body. Program and production config
// references are only sent when set.
type ProjectCreate struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	ProgramID          string `json:"program_id,omitempty"`
	ProductionConfigID string `json:"production_config_id,omitempty"`
}

// Program is read-only reference data selected when creating a project
type Program struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	Description           string  `json:"description,omitempty"`
	PromptPlaceholderText string  `json:"prompt_placeholder_text,omitempty"`
	ScriptRules           *string `json:"script_rules,omitempty"`
	StoryboardRules       *string `json:"storyboard_rules,omitempty"`
	MusicRules            *string `json:"music_rules,omitempty"`
}

type ProductionConfig struct {
	ID                        string `json:"id"`
	Title                     string `json:"title,omitempty"`
	VideoWidth                int    `json:"video_width,omitempty"`
	VideoHeight               int    `json:"video_height,omitempty"`
	SDBaseImageWidth          int    `json:"sd_base_image_width,omitempty"`
	SDBaseImageHeight         int    `json:"sd_base_image_height,omitempty"`
	EnableSubtitles           bool   `json:"enable_subtitles,omitempty"`
	VoicelineSyncedStoryboard bool   `json:"voiceline_synced_storyboard,omitempty"`
	NumImagesPerScene         int    `json:"num_images_per_scene,omitempty"`
}

type Actor struct {
	Name                string  `json:"name"`
	Bio                 *string `json:"bio,omitempty"`
	CatchPhrase         *string `json:"catch_phrase,omitempty"`
	PhysicalDescription *string `json:"physical_description,omitempty"`
	Speaker             string  `json:"speaker,omitempty"`
}

type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

type SignInCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResult is the credential pair returned by the sign-in endpoint
type SignInResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResult carries the new access token. RefreshToken is empty when the backend does not rotate it.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
