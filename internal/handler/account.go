package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/session"
)

type accountView struct {
	UserID         int64     `json:"UserID"`
	UserType       string    `json:"UserType"`
	FullName       string    `json:"FullName"`
	Email          string    `json:"Email"`
	Phone          string    `json:"Phone"`
	Gender         string    `json:"Gender"`
	DOB            *string   `json:"DOB"`
	Address        string    `json:"Address"`
	City           string    `json:"City"`
	Country        string    `json:"Country"`
	DateJoined     time.Time `json:"DateJoined"`
	AdminLevel     string    `json:"AdminLevel,omitempty"`
	Qualifications string    `json:"Qualifications,omitempty"`
	Expertise      string    `json:"Expertise,omitempty"`
	IntroVideoURL  *string   `json:"IntroVideoURL,omitempty"`
	CertTitle      string    `json:"CertTitle,omitempty"`
	CertIssuer     string    `json:"CertIssuer,omitempty"`
	CertYear       *int      `json:"CertYear,omitempty"`
	CertID         string    `json:"CertID,omitempty"`
}

func viewAccount(a *account.Account) accountView {
	return accountView{
		UserID:         a.ID,
		UserType:       string(a.Role),
		FullName:       a.FullName,
		Email:          a.Email,
		Phone:          a.Phone,
		Gender:         a.Gender,
		DOB:            optDate(a.DOB),
		Address:        a.Address,
		City:           a.City,
		Country:        a.Country,
		DateJoined:     a.DateJoined,
		AdminLevel:     a.AdminLevel,
		Qualifications: a.Qualifications,
		Expertise:      a.Expertise,
		IntroVideoURL:  a.IntroVideoURL,
		CertTitle:      a.Cert.Title,
		CertIssuer:     a.Cert.Issuer,
		CertYear:       a.Cert.Year,
		CertID:         a.Cert.ID,
	}
}

func viewAccounts(list []account.Account) []accountView {
	out := make([]accountView, len(list))
	for i := range list {
		out[i] = viewAccount(&list[i])
	}
	return out
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.Accounts.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password, req.UserType)
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.Sessions.Start(c, session.Principal{
		UserID: a.ID,
		Role:   a.Role,
		Name:   a.FullName,
		Email:  a.Email,
	}); err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{
		"message":  "Welcome back, " + a.FullName + "!",
		"userType": a.Role,
	}
	resp[string(a.Role)+"Id"] = a.ID
	ok(c, http.StatusOK, resp)
}

type signupRequest struct {
	FullName string `json:"FullName"`
	Email    string `json:"Email"`
	Password string `json:"Password"`
	Phone    string `json:"Phone"`
	Gender   string `json:"Gender"`
	DOB      string `json:"DOB"`
	Address  string `json:"Address"`
	City     string `json:"City"`
	Country  string `json:"Country"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.Accounts.Signup(c.Request.Context(), account.SignupRequest(req))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "registration successful", "clientId": id})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Sessions.End(c); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) userSession(c *gin.Context) {
	s, found := session.Current(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "no active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":    s.Principal.UserID,
		"userType":  s.Principal.Role,
		"userName":  s.Principal.Name,
		"userEmail": s.Principal.Email,
	})
}

type profileRequest struct {
	FullName       *string `json:"FullName"`
	Email          *string `json:"Email"`
	Password       *string `json:"Password"`
	Phone          *string `json:"Phone"`
	Gender         *string `json:"Gender"`
	DOB            *string `json:"DOB"`
	Address        *string `json:"Address"`
	City           *string `json:"City"`
	Country        *string `json:"Country"`
	AdminLevel     *string `json:"AdminLevel"`
	Qualifications *string `json:"Qualifications"`
	Expertise      *string `json:"Expertise"`
	CertTitle      *string `json:"CertTitle"`
	CertIssuer     *string `json:"CertIssuer"`
	CertYear       *int    `json:"CertYear"`
	CertID         *string `json:"CertID"`
}

func (r profileRequest) patch() (account.Patch, error) {
	p := account.Patch{
		FullName:       r.FullName,
		Email:          r.Email,
		Password:       r.Password,
		Phone:          r.Phone,
		Gender:         r.Gender,
		Address:        r.Address,
		City:           r.City,
		Country:        r.Country,
		AdminLevel:     r.AdminLevel,
		Qualifications: r.Qualifications,
		Expertise:      r.Expertise,
		CertTitle:      r.CertTitle,
		CertIssuer:     r.CertIssuer,
		CertYear:       r.CertYear,
		CertID:         r.CertID,
	}
	if r.DOB != nil {
		dob, err := account.ParseDate(*r.DOB)
		if err != nil {
			return account.Patch{}, err
		}
		p.DOB = &dob
	}
	return p, nil
}

func (h *Handler) profile(c *gin.Context) {
	p := session.MustPrincipal(c)
	a, err := h.Accounts.Get(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"profile": viewAccount(a)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if !bind(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}

	// Principals cannot promote themselves, and only trainers carry
	// credentials.
	p := session.MustPrincipal(c)
	patch.AdminLevel = nil
	if p.Role != account.RoleTrainer {
		patch.Qualifications, patch.Expertise = nil, nil
		patch.CertTitle, patch.CertIssuer, patch.CertYear, patch.CertID = nil, nil, nil, nil
	}

	if err := h.Accounts.Update(c.Request.Context(), p.Role, p.UserID, patch); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "profile updated"})
}

type introVideoRequest struct {
	IntroVideoURL string `json:"introVideoUrl"`
}

func (h *Handler) updateIntroVideo(c *gin.Context) {
	var req introVideoRequest
	if !bind(c, &req) {
		return
	}
	url, err := h.Accounts.SetIntroVideo(c.Request.Context(), session.MustPrincipal(c).UserID, req.IntroVideoURL)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "intro video updated", "introVideoUrl": url})
}

func (h *Handler) listAccounts(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := h.Accounts.List(c.Request.Context(), role)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"profiles": viewAccounts(list)})
	}
}

type createAccountRequest struct {
	signupRequest
	AdminLevel     string `json:"AdminLevel"`
	Qualifications string `json:"Qualifications"`
	Expertise      string `json:"Expertise"`
	CertTitle      string `json:"CertTitle"`
	CertIssuer     string `json:"CertIssuer"`
	CertYear       *int   `json:"CertYear"`
	CertID         string `json:"CertID"`
}

func (h *Handler) createAccount(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if !bind(c, &req) {
			return
		}
		a := account.Account{
			Role:     role,
			FullName: strings.TrimSpace(req.FullName),
			Email:    strings.TrimSpace(req.Email),
			Phone:    req.Phone,
			Gender:   req.Gender,
			Address:  req.Address,
			City:     req.City,
			Country:  req.Country,
		}
		if req.DOB != "" {
			dob, err := account.ParseDate(req.DOB)
			if err != nil {
				fail(c, err)
				return
			}
			a.DOB = &dob
		}
		switch role {
		case account.RoleAdmin:
			a.AdminLevel = req.AdminLevel
		case account.RoleTrainer:
			a.Qualifications = req.Qualifications
			a.Expertise = req.Expertise
			a.Cert = account.Certification{
				Title:  req.CertTitle,
				Issuer: req.CertIssuer,
				Year:   req.CertYear,
				ID:     req.CertID,
			}
		}

		id, err := h.Accounts.Create(c.Request.Context(), a, req.Password)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusCreated, gin.H{"message": string(role) + " created", "id": id})
	}
}

func (h *Handler) getAccount(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c, "id")
		if !valid {
			return
		}
		a, err := h.Accounts.Get(c.Request.Context(), role, id)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"profile": viewAccount(a)})
	}
}

func (h *Handler) updateAccount(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c, "id")
		if !valid {
			return
		}
		var req profileRequest
		if !bind(c, &req) {
			return
		}
		patch, err := req.patch()
		if err != nil {
			fail(c, err)
			return
		}
		if err := h.Accounts.Update(c.Request.Context(), role, id, patch); err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"message": string(role) + " updated"})
	}
}

func (h *Handler) deleteAccount(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c, "id")
		if !valid {
			return
		}
		if err := h.Accounts.Delete(c.Request.Context(), role, id); err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"message": string(role) + " deleted"})
	}
}

func (h *Handler) searchClients(c *gin.Context) {
	list, err := h.Accounts.SearchClients(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"clients": viewAccounts(list)})
}

func (h *Handler) viewClient(c *gin.Context) {
	h.viewProfile(c, account.RoleClient, "clientId")
}

func (h *Handler) viewTrainer(c *gin.Context) {
	h.viewProfile(c, account.RoleTrainer, "trainerId")
}

func (h *Handler) viewProfile(c *gin.Context, role account.Role, param string) {
	id, valid := pathID(c, param)
	if !valid {
		return
	}
	a, err := h.Accounts.Get(c.Request.Context(), role, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"profile": viewAccount(a)})
}
