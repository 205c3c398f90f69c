package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/resume-tailor/internal/api"
	"github.com/fmuoria/resume-tailor/internal/config"
	"github.com/fmuoria/resume-tailor/internal/ingestion"
	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/fmuoria/resume-tailor/internal/platform"
	"github.com/fmuoria/resume-tailor/internal/session"
	"github.com/fmuoria/resume-tailor/internal/store"
	"github.com/fmuoria/resume-tailor/internal/workflow"
)

const (
	appID = "io.github.fmuoria.resumetailor"

	msgSessionExpired = "Your session has expired. Please log in again."
)

// Options configures the GUI application
type Options struct {
	Config *config.Config
	// DB persists folder preferences and history. Nil disables both.
	DB *store.DB
	// Capabilities overrides host probing when set
	Capabilities *platform.Capabilities
	// ConfigPath is where settings are saved. Empty means the default path.
	ConfigPath string
}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	configPath string
	db         *store.DB
	caps       platform.Capabilities

	session  *session.Session
	client   *api.Client
	workflow *workflow.Workflow

	loginView fyne.CanvasObject
	mainView  fyne.CanvasObject

	// Login
	usernameEntry *widget.Entry
	passwordEntry *widget.Entry
	loginBtn      *widget.Button
	loginError    *widget.Label

	// Tailor tab
	profileSelect  *widget.Select
	folderSection  *fyne.Container
	folderLabel    *widget.Label
	setFolderBtn   *widget.Button
	clearFolderBtn *widget.Button
	companyEntry   *widget.Entry
	roleEntry      *widget.Entry
	jobDescText    *widget.Entry
	submitBtn      *widget.Button
	statusLabel    *widget.Label
	noticeLabel    *widget.Label
	messageLabel   *widget.Label
	errorLabel     *widget.Label

	// Settings tab
	saveSettingsBtn *widget.Button

	// History tab
	historyTable *widget.Table
	exportBtn    *widget.Button

	profiles []models.Profile
	// profileIDs maps each select option to its profile id
	profileIDs map[string]string
	history    []models.HistoryEntry
}

// NewApp creates a new GUI application
func NewApp(opts Options) *App {
	return newApp(app.NewWithID(appID), opts)
}

func newApp(fyneApp fyne.App, opts Options) *App {
	w := fyneApp.NewWindow("Resume Tailor")
	w.Resize(fyne.NewSize(900, 700))

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	caps := platform.Probe(platform.HostInfo{
		Mobile:     fyne.CurrentDevice().IsMobile(),
		HasDisplay: true,
	})
	if opts.Capabilities != nil {
		caps = *opts.Capabilities
	}
	slog.Info("host capabilities", "directoryAccess", caps.DirectoryAccess.String(), "saveDialog", caps.SaveDialog.String())

	a := &App{
		fyneApp:    fyneApp,
		mainWindow: w,
		config:     cfg,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		caps:       caps,
		session:    session.Init(fyneApp.Preferences()),
	}
	a.buildBackend()
	a.setupUI()

	return a
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// buildBackend wires the API client and the submission workflow from the
// current configuration
func (a *App) buildBackend() {
	a.client = api.NewClient(a.config.NormalizedBackendURL(), a.session, nil)

	opts := workflow.Options{
		Profiles:  a.client,
		Generator: a.client,
		Platform: workflow.Platform{
			Capabilities: a.caps,
			Directories:  platform.LocalFS{},
			Picker:       folderPicker{win: a.mainWindow},
			SaveDialog:   saveDialog{win: a.mainWindow},
			Downloader:   platform.NewDirDownloader(a.config.DownloadsDir, ""),
		},
		OnStateChange: a.onStateChange,
	}
	if a.db != nil {
		opts.Folders = a.db.Folders()
		opts.History = a.db.History()
	}
	a.workflow = workflow.New(opts)
}

// setupUI builds both views and shows the one matching the session
func (a *App) setupUI() {
	a.loginView = a.createLoginView()
	a.mainView = a.createMainView()

	if _, ok := a.session.Token(); ok {
		a.showMain()
		return
	}
	a.showLogin("")
}

func (a *App) showLogin(errMsg string) {
	a.passwordEntry.SetText("")
	a.loginError.SetText(errMsg)
	a.mainWindow.SetContent(a.loginView)
}

func (a *App) showMain() {
	a.mainWindow.SetContent(a.mainView)
	a.refreshHistory()
	go a.reloadProfiles()
}

// createLoginView creates the login form
func (a *App) createLoginView() fyne.CanvasObject {
	a.usernameEntry = widget.NewEntry()
	a.usernameEntry.SetPlaceHolder("Username")

	a.passwordEntry = widget.NewPasswordEntry()
	a.passwordEntry.SetPlaceHolder("Password")
	a.passwordEntry.OnSubmitted = func(string) { a.handleLogin() }

	a.loginBtn = widget.NewButton("Login", a.handleLogin)
	a.loginBtn.Importance = widget.HighImportance

	a.loginError = widget.NewLabel("")
	a.loginError.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem("Username", a.usernameEntry),
		widget.NewFormItem("Password", a.passwordEntry),
	)

	return container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle("Resume Tailor", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		form,
		a.loginBtn,
		a.loginError,
	))
}

// createMainView creates the tabs shown once logged in
func (a *App) createMainView() fyne.CanvasObject {
	logoutBtn := widget.NewButton("Logout", a.handleLogout)

	tabs := container.NewAppTabs(
		container.NewTabItem("Tailor Resume", a.createTailorTab()),
		container.NewTabItem("History", a.createHistoryTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	header := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle("Resume Tailor", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		logoutBtn,
	)
	return container.NewBorder(header, nil, nil, nil, tabs)
}

// createTailorTab creates the job submission form
func (a *App) createTailorTab() fyne.CanvasObject {
	a.profileSelect = widget.NewSelect(nil, func(string) {
		a.showFeedback(workflow.Feedback{})
		a.updateFolderSection()
	})
	a.profileSelect.PlaceHolder = "Select a profile"

	a.folderLabel = widget.NewLabel("")
	a.setFolderBtn = widget.NewButton("Set Save Folder", a.handleSetFolder)
	a.clearFolderBtn = widget.NewButton("Clear", a.handleClearFolder)
	a.folderSection = container.NewHBox(a.folderLabel, a.setFolderBtn, a.clearFolderBtn)

	a.companyEntry = widget.NewEntry()
	a.companyEntry.SetPlaceHolder("e.g., Acme Corp")

	a.roleEntry = widget.NewEntry()
	a.roleEntry.SetPlaceHolder("e.g., Backend Engineer")

	a.jobDescText = widget.NewMultiLineEntry()
	a.jobDescText.SetPlaceHolder("Paste the job description...")
	a.jobDescText.SetMinRowsVisible(10)
	loadJobBtn := widget.NewButton("Load from File...", a.handleLoadJobDescription)

	a.submitBtn = widget.NewButton("Generate Resume PDF", a.handleSubmit)
	a.submitBtn.Importance = widget.HighImportance

	a.statusLabel = widget.NewLabel(stateText(workflow.Idle))
	a.noticeLabel = widget.NewLabel("")
	a.noticeLabel.Importance = widget.WarningImportance
	a.messageLabel = widget.NewLabel("")
	a.messageLabel.Importance = widget.SuccessImportance
	a.errorLabel = widget.NewLabel("")
	a.errorLabel.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem("Profile", a.profileSelect),
		widget.NewFormItem("Company", a.companyEntry),
		widget.NewFormItem("Role", a.roleEntry),
		widget.NewFormItem("Job Description", a.jobDescText),
		widget.NewFormItem("", container.NewHBox(loadJobBtn)),
	)

	a.updateFolderSection()

	return container.NewVScroll(container.NewVBox(
		form,
		a.folderSection,
		widget.NewSeparator(),
		container.NewHBox(a.submitBtn, a.statusLabel),
		a.noticeLabel,
		a.messageLabel,
		a.errorLabel,
	))
}

// handleLogin runs the login request off the UI goroutine
func (a *App) handleLogin() {
	username, password := a.usernameEntry.Text, a.passwordEntry.Text
	a.loginBtn.Disable()
	a.loginError.SetText("")

	go func() {
		err := a.login(context.Background(), username, password)
		fyne.Do(func() {
			a.loginBtn.Enable()
			if err != nil {
				a.loginError.SetText(models.UserMessage(err))
				return
			}
			a.showMain()
		})
	}()
}

func (a *App) login(ctx context.Context, username, password string) error {
	if _, err := a.client.Login(ctx, username, password); err != nil {
		slog.Warn("login failed", "username", username, "error", err)
		return err
	}
	slog.Info("logged in", "username", username)
	return nil
}

// handleLogout clears the session and returns to the login form
func (a *App) handleLogout() {
	a.session.Teardown(true)
	a.applyProfiles(nil)
	a.showFeedback(workflow.Feedback{})
	a.showLogin("")
}

// expireSession drops a token the backend no longer accepts
func (a *App) expireSession() {
	slog.Info("session rejected by backend, returning to login")
	a.session.ClearToken()
	a.applyProfiles(nil)
	a.showLogin(msgSessionExpired)
}

func (a *App) reloadProfiles() {
	profiles, err := a.workflow.LoadProfiles(context.Background())
	fyne.Do(func() {
		if err != nil {
			if errors.Is(err, models.ErrAuth) {
				a.expireSession()
				return
			}
			a.showFeedback(workflow.Feedback{Error: models.UserMessage(err)})
			return
		}
		a.applyProfiles(profiles)
	})
}

func (a *App) applyProfiles(profiles []models.Profile) {
	a.profiles = profiles
	labels := profileLabels(profiles)
	a.profileIDs = make(map[string]string, len(profiles))
	for i, p := range profiles {
		a.profileIDs[labels[i]] = p.ID
	}
	a.profileSelect.ClearSelected()
	a.profileSelect.SetOptions(labels)
	a.updateFolderSection()
}

// profileLabels names each profile for the select. A name shared by several
// profiles is suffixed with the id so every option stays distinct.
func profileLabels(profiles []models.Profile) []string {
	seen := make(map[string]int, len(profiles))
	for _, p := range profiles {
		seen[p.Name]++
	}
	labels := make([]string, len(profiles))
	for i, p := range profiles {
		labels[i] = p.Name
		if seen[p.Name] > 1 {
			labels[i] = fmt.Sprintf("%s (%s)", p.Name, p.ID)
		}
	}
	return labels
}

func (a *App) selectedProfileID() string {
	return a.profileIDs[a.profileSelect.Selected]
}

// updateFolderSection shows the folder controls when the host can remember
// folders, reflecting the selected profile's preference
func (a *App) updateFolderSection() {
	if !a.workflow.Capabilities().DirectoryAccess.Available() {
		a.folderSection.Hide()
		return
	}
	a.folderSection.Show()

	id := a.selectedProfileID()
	if id == "" {
		a.folderLabel.SetText("Select a profile to choose its save folder.")
		a.setFolderBtn.Disable()
		a.clearFolderBtn.Disable()
		return
	}

	a.setFolderBtn.Enable()
	if h := a.workflow.Folder(id); h != nil {
		a.folderLabel.SetText("Save folder: " + h.Name)
		a.setFolderBtn.SetText("Change Folder")
		a.clearFolderBtn.Enable()
	} else {
		a.folderLabel.SetText("No save folder set for this profile.")
		a.setFolderBtn.SetText("Set Save Folder")
		a.clearFolderBtn.Disable()
	}
}

func (a *App) handleSetFolder() {
	id := a.selectedProfileID()
	a.showFeedback(workflow.Feedback{})
	a.setFolderBtn.Disable()

	go func() {
		fb := a.workflow.SetFolder(context.Background(), id)
		fyne.Do(func() {
			a.showFeedback(fb)
			a.updateFolderSection()
		})
	}()
}

func (a *App) handleClearFolder() {
	id := a.selectedProfileID()
	go func() {
		fb := a.workflow.ClearFolder(context.Background(), id)
		fyne.Do(func() {
			a.showFeedback(fb)
			a.updateFolderSection()
		})
	}()
}

// handleLoadJobDescription fills the job description from a document
func (a *App) handleLoadJobDescription() {
	d := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		path := uc.URI().Path()
		uc.Close()

		go func() {
			text, err := ingestion.ExtractText(path)
			fyne.Do(func() {
				if err != nil {
					slog.Warn("failed to read job description", "path", path, "error", err)
					dialog.ShowError(fmt.Errorf("failed to read job description: %w", err), a.mainWindow)
					return
				}
				a.jobDescText.SetText(text)
			})
		}()
	}, a.mainWindow)
	d.SetFilter(storage.NewExtensionFileFilter(ingestion.SupportedExtensions))
	d.Show()
}

// handleSubmit runs a submission off the UI goroutine
func (a *App) handleSubmit() {
	req := workflow.Request{
		ProfileID:      a.selectedProfileID(),
		Company:        a.companyEntry.Text,
		Role:           a.roleEntry.Text,
		JobDescription: a.jobDescText.Text,
	}
	a.showFeedback(workflow.Feedback{})
	a.submitBtn.Disable()

	go func() {
		res := a.workflow.Submit(context.Background(), req)
		fyne.Do(func() { a.applyResult(res) })
	}()
}

func (a *App) applyResult(res workflow.Result) {
	a.submitBtn.Enable()
	a.showFeedback(res.Feedback)
	a.noticeLabel.SetText(res.Notice)
	a.refreshHistory()

	if errors.Is(res.Err, models.ErrAuth) {
		a.expireSession()
	}
}

// onStateChange is called from the submission goroutine
func (a *App) onStateChange(s workflow.State) {
	fyne.Do(func() {
		a.statusLabel.SetText(stateText(s))
		if s.InFlight() {
			a.submitBtn.Disable()
			a.saveSettingsBtn.Disable()
			return
		}
		a.saveSettingsBtn.Enable()
	})
}

// showFeedback shows exactly one of the success and error messages
func (a *App) showFeedback(fb workflow.Feedback) {
	a.messageLabel.SetText(fb.Message)
	a.errorLabel.SetText(fb.Error)
	a.noticeLabel.SetText("")
}

func stateText(s workflow.State) string {
	switch s {
	case workflow.Validating:
		return "Checking form..."
	case workflow.Submitting:
		return "Generating PDF..."
	case workflow.ResolvingOutput:
		return "Saving PDF..."
	case workflow.Saved:
		return "Saved"
	case workflow.Downloaded:
		return "Downloaded"
	case workflow.Failed:
		return "Failed"
	default:
		return "Ready"
	}
}
