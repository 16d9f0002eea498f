package http

import (
	"net/http"
	"path/filepath"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/handlers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Stock         *handlers.StockHandler
	Account       *handlers.AccountHandler
	WorkOrder     *handlers.WorkOrderHandler
	WorkProcess   *handlers.WorkProcessHandler
	MonthlyReport *handlers.MonthlyReportHandler
	Health        *handlers.HealthHandler
	// Feed serves the websocket change feed. Optional.
	Feed http.Handler
}

func NewRouter(h Handlers, staticDir string) *mux.Router {
	r := mux.NewRouter()

	// Serve static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
	}).Methods("GET")

	// Health and metrics
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if h.Feed != nil {
		r.Handle("/ws", h.Feed).Methods("GET")
	}

	// Stock
	stockAPI := r.PathPrefix("/api/stok").Subrouter()
	stockAPI.HandleFunc("", h.Stock.List).Methods("GET")
	stockAPI.HandleFunc("", h.Stock.Create).Methods("POST")
	stockAPI.HandleFunc("/excel-export", h.Stock.ExportExcel).Methods("GET")
	stockAPI.HandleFunc("/excel-import", h.Stock.ImportExcel).Methods("POST")
	stockAPI.HandleFunc("/ara/urun-adi", h.Stock.SearchByName).Methods("GET")
	stockAPI.HandleFunc("/ara/urun-kodu", h.Stock.SearchByCode).Methods("GET")
	stockAPI.HandleFunc("/ara/urun-kodu/{kod}", h.Stock.SearchByCode).Methods("GET")
	stockAPI.HandleFunc("/miktar-azalt", h.Stock.Decrement).Methods("POST")
	stockAPI.HandleFunc("/miktar-azalt-batch", h.Stock.DecrementBatch).Methods("POST")
	stockAPI.HandleFunc("/{id:[0-9]+}", h.Stock.Get).Methods("GET")
	stockAPI.HandleFunc("/{id:[0-9]+}", h.Stock.Update).Methods("PUT")
	stockAPI.HandleFunc("/{id:[0-9]+}", h.Stock.Delete).Methods("DELETE")

	// Accounts
	accountAPI := r.PathPrefix("/api/cari").Subrouter()
	accountAPI.HandleFunc("", h.Account.List).Methods("GET")
	accountAPI.HandleFunc("", h.Account.Create).Methods("POST")
	accountAPI.HandleFunc("/sonraki-kod", h.Account.NextCode).Methods("GET")
	accountAPI.HandleFunc("/ekle-tc-kontrolu-ile", h.Account.CreateWithDedupCheck).Methods("POST")
	accountAPI.HandleFunc("/ara/tc", h.Account.FindByNationalID).Methods("GET")
	accountAPI.HandleFunc("/ara/tc/{tc}", h.Account.FindByNationalID).Methods("GET")
	accountAPI.HandleFunc("/ara/unvan", h.Account.FindByTitle).Methods("GET")
	accountAPI.HandleFunc("/{id:[0-9]+}", h.Account.Get).Methods("GET")
	accountAPI.HandleFunc("/{id:[0-9]+}", h.Account.Update).Methods("PUT")
	accountAPI.HandleFunc("/{id:[0-9]+}", h.Account.Delete).Methods("DELETE")

	// Work orders
	orderAPI := r.PathPrefix("/api/is-evraki").Subrouter()
	orderAPI.HandleFunc("", h.WorkOrder.List).Methods("GET")
	orderAPI.HandleFunc("", h.WorkOrder.Create).Methods("POST")
	orderAPI.HandleFunc("/sonraki-no", h.WorkOrder.NextNumber).Methods("GET")
	orderAPI.HandleFunc("/kaydet-ve-gonder", h.WorkOrder.SaveAndNotify).Methods("POST")
	orderAPI.HandleFunc("/guncelle-ve-gonder/{id:[0-9]+}", h.WorkOrder.UpdateAndNotify).Methods("PUT")
	orderAPI.HandleFunc("/gonder/{id:[0-9]+}", h.WorkOrder.SendExisting).Methods("POST")
	orderAPI.HandleFunc("/{id:[0-9]+}", h.WorkOrder.Get).Methods("GET")
	orderAPI.HandleFunc("/{id:[0-9]+}", h.WorkOrder.Update).Methods("PUT")
	orderAPI.HandleFunc("/{id:[0-9]+}", h.WorkOrder.Delete).Methods("DELETE")

	// Work process templates
	processAPI := r.PathPrefix("/api/is-prosesi").Subrouter()
	processAPI.HandleFunc("", h.WorkProcess.List).Methods("GET")
	processAPI.HandleFunc("", h.WorkProcess.Create).Methods("POST")
	processAPI.HandleFunc("/maddeler/{madde_id:[0-9]+}", h.WorkProcess.UpdateItem).Methods("PUT")
	processAPI.HandleFunc("/maddeler/{madde_id:[0-9]+}", h.WorkProcess.DeleteItem).Methods("DELETE")
	processAPI.HandleFunc("/maddeler/{madde_id:[0-9]+}/tamamla", h.WorkProcess.CompleteItem).Methods("PATCH")
	processAPI.HandleFunc("/{id:[0-9]+}", h.WorkProcess.Get).Methods("GET")
	processAPI.HandleFunc("/{id:[0-9]+}", h.WorkProcess.Update).Methods("PUT")
	processAPI.HandleFunc("/{id:[0-9]+}", h.WorkProcess.Delete).Methods("DELETE")
	processAPI.HandleFunc("/{id:[0-9]+}/maddeler", h.WorkProcess.ListItems).Methods("GET")
	processAPI.HandleFunc("/{id:[0-9]+}/maddeler", h.WorkProcess.AddItem).Methods("POST")

	// Monthly report trigger
	r.HandleFunc("/api/aylik-rapor/gonder", h.MonthlyReport.Send).Methods("POST")

	return r
}
