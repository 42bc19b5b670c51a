// Package email resuelve templates y envía las notificaciones transaccionales
// de EzfinTutor (bienvenida, inscripción, baja de curso y pago).
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                 HTTP controllers / CLI                          │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                       Email Service                             │
//	│    - SendWelcome / SendEnrollment / SendUnenrollment            │
//	│    - SendPayment                                                │
//	└──────────────┬───────────────────────────────┬──────────────────┘
//	               │                               │
//	               ▼                               ▼
//	┌──────────────────────────────┐  ┌──────────────────────────────┐
//	│ Resolver (store → default)   │  │ Sender (SMTP)                │
//	│  opcional: CachedResolver    │  │                              │
//	└──────────────────────────────┘  └──────────────────────────────┘
package email
